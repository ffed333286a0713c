package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the delivery lifecycle stage of a message. It only ever moves
// forward: sent -> delivered -> read.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// User represents a registered account. PasswordHash never leaves the
// persistence boundary.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Message is a direct message between two users. Status is mutated only by
// the dispatcher's delivered upgrade and by read receipts.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationSummary is one row of the conversation list: a peer plus the
// most recent message exchanged with them, if any.
type ConversationSummary struct {
	PeerID      uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	LastMessage *Message  `json:"last_message"`
}
