package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastSeenTTL = 30 * 24 * time.Hour

// RedisLastSeenStore keeps a per-identity "last reachable at" stamp. It is
// history only; the in-process registry decides who is online right now.
type RedisLastSeenStore struct {
	rdb *redis.Client
}

func NewRedisLastSeenStore(rdb *redis.Client) *RedisLastSeenStore {
	return &RedisLastSeenStore{rdb: rdb}
}

func (s *RedisLastSeenStore) Touch(ctx context.Context, userID string) error {
	key := "last_seen:" + userID
	return s.rdb.Set(ctx, key, time.Now().Unix(), lastSeenTTL).Err()
}

func (s *RedisLastSeenStore) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	key := "last_seen:" + userID
	unix, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}
