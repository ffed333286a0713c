package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository handles the persistent account records.
type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// ListUsersExcept returns every account except the given one,
	// newest first.
	ListUsersExcept(ctx context.Context, id uuid.UUID) ([]User, error)
}

// MessageRepository handles durable message state. It is the only owner of
// Message.Status outside a single in-flight request.
type MessageRepository interface {
	SaveMessage(ctx context.Context, m *Message) error
	// MarkDelivered upgrades a single message from sent to delivered.
	// The predicate is forward-only: an already delivered or read row is
	// left untouched.
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	// MarkConversationRead bulk-advances every message from sender to
	// receiver that is not yet read. Returns the number of rows touched;
	// zero is not an error.
	MarkConversationRead(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error)
	// GetConversation returns both directions of the pair ordered by
	// created_at ascending, unfiltered by status.
	GetConversation(ctx context.Context, a, b uuid.UUID) ([]Message, error)
	// GetLastMessage returns the newest message of the pair, or
	// ErrMessageNotFound when the two have never talked.
	GetLastMessage(ctx context.Context, a, b uuid.UUID) (*Message, error)
}
