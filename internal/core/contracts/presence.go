package contracts

import (
	"context"
	"time"
)

// LastSeenStore records when an identity was last reachable. It is history
// only; the Registry alone answers "online right now".
type LastSeenStore interface {
	// Touch stamps the identity with the current time.
	Touch(ctx context.Context, userID string) error
	// LastSeen returns the most recent stamp, or zero time if none.
	LastSeen(ctx context.Context, userID string) (time.Time, error)
}
