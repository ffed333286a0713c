package postgres

import (
	"context"
	"courier/internal/core/domain"
	"database/sql"

	"github.com/google/uuid"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) SaveMessage(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO messages (id, sender_id, receiver_id, content, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, m.ID, m.SenderID, m.ReceiverID, m.Content, m.Status, m.CreatedAt)
	return err
}

// MarkDelivered upgrades one message from sent to delivered. The predicate
// keeps the lifecycle forward-only: rows already delivered or read are left
// alone.
func (r *MessageRepo) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE messages SET status = $1
        WHERE id = $2 AND status = $3
    `, domain.StatusDelivered, id, domain.StatusSent)
	return err
}

func (r *MessageRepo) MarkConversationRead(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE messages SET status = $1
        WHERE sender_id = $2 AND receiver_id = $3 AND status <> $1
    `, domain.StatusRead, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MessageRepo) GetConversation(ctx context.Context, a, b uuid.UUID) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, sender_id, receiver_id, content, status, created_at
        FROM messages
        WHERE (sender_id = $1 AND receiver_id = $2)
           OR (sender_id = $2 AND receiver_id = $1)
        ORDER BY created_at ASC
    `, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) GetLastMessage(ctx context.Context, a, b uuid.UUID) (*domain.Message, error) {
	var m domain.Message
	err := r.db.QueryRowContext(ctx, `
        SELECT id, sender_id, receiver_id, content, status, created_at
        FROM messages
        WHERE (sender_id = $1 AND receiver_id = $2)
           OR (sender_id = $2 AND receiver_id = $1)
        ORDER BY created_at DESC
        LIMIT 1
    `, a, b).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Status, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}
