package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"
	"courier/internal/platform/metrics"
)

// PresenceService derives the online set from the registry and pushes it to
// live connections. Nothing is cached between calls; every payload reflects
// a registry state that existed at some real instant.
type PresenceService struct {
	log      *slog.Logger
	registry contracts.Registry
}

func NewPresenceService(log *slog.Logger, registry contracts.Registry) *PresenceService {
	return &PresenceService{log: log, registry: registry}
}

// Snapshot returns the sorted online set.
func (s *PresenceService) Snapshot() []string {
	return s.registry.OnlineIdentities()
}

// BroadcastAll pushes the current online set to every live connection. Called
// after every admit and every remove.
func (s *PresenceService) BroadcastAll(ctx context.Context) {
	online := s.registry.OnlineIdentities()
	metrics.OnlineUsers.Set(float64(len(online)))
	data, _ := json.Marshal(domain.PresenceEvent{
		Type:          domain.TypePresence,
		OnlineUserIDs: online,
	})
	for _, c := range s.registry.Clients() {
		if err := c.Send(ctx, data); err != nil {
			s.log.WarnContext(ctx, "presence - broadcast - send failed", "user_id", c.UserID(), "err", err)
		}
	}
	s.log.DebugContext(ctx, "presence - broadcast", "online", len(online))
}

// SendSnapshot answers a presence:get from a single connection without
// waiting for the next mutation-triggered broadcast.
func (s *PresenceService) SendSnapshot(ctx context.Context, userID string) {
	c, ok := s.registry.Resolve(userID)
	if !ok {
		return
	}
	data, _ := json.Marshal(domain.PresenceEvent{
		Type:          domain.TypePresence,
		OnlineUserIDs: s.registry.OnlineIdentities(),
	})
	_ = c.Send(ctx, data)
}

// IsOnline reports whether the identity has a live registry entry right now.
func (s *PresenceService) IsOnline(userID string) bool {
	_, ok := s.registry.Resolve(userID)
	return ok
}
