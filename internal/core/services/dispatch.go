package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"
	"courier/internal/platform/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("courier-services")

// DispatchService persists a new message and fans it out. The receiver's
// connection is resolved immediately before fanout, never earlier, so a
// receiver disconnecting mid-dispatch correctly leaves the message at
// "sent".
type DispatchService struct {
	log      *slog.Logger
	registry contracts.Registry
	repo     domain.MessageRepository
	validate *validator.Validate
}

func NewDispatchService(log *slog.Logger, registry contracts.Registry, repo domain.MessageRepository) *DispatchService {
	return &DispatchService{
		log:      log,
		registry: registry,
		repo:     repo,
		validate: validator.New(),
	}
}

// Send validates, persists and fans out one direct message. The returned
// snapshot carries the final persisted status; the caller's ack must never
// report a staler one.
func (s *DispatchService) Send(ctx context.Context, senderID string, req domain.SendRequest) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "DispatchService.Send", trace.WithAttributes(
		attribute.String("sender_id", senderID),
		attribute.Int("content_len", len(req.Content)),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver_id", domain.ErrValidation)
	}
	sender, err := uuid.Parse(senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender_id", domain.ErrValidation)
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiverID,
		Content:    req.Content,
		Status:     domain.StatusSent,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		s.log.ErrorContext(ctx, "dispatch - send - save failed", "sender_id", senderID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// Registry read happens here, at the last possible moment before
	// fanout. Losing the disconnect race leaves the message at "sent",
	// recoverable by the receiver's next history pull.
	receiver, online := s.registry.Resolve(receiverID.String())
	if online {
		if err := s.repo.MarkDelivered(ctx, msg.ID); err != nil {
			// The insert already succeeded; the echo reflects the
			// best-known persisted status instead.
			span.RecordError(err)
			s.log.ErrorContext(ctx, "dispatch - send - delivered upgrade failed", "message_id", msg.ID.String(), "err", err)
		} else {
			msg.Status = domain.StatusDelivered
			s.push(ctx, receiver, msg)
		}
	}

	if senderConn, ok := s.registry.Resolve(senderID); ok {
		s.push(ctx, senderConn, msg)
	}

	metrics.MessagesDispatched.WithLabelValues(string(msg.Status)).Inc()
	span.SetAttributes(attribute.String("message.status", string(msg.Status)))
	span.SetStatus(codes.Ok, "dispatched")
	s.log.InfoContext(ctx, "dispatch - send - message dispatched",
		"message_id", msg.ID.String(),
		"sender_id", senderID,
		"receiver_id", receiverID.String(),
		"status", string(msg.Status),
	)
	return msg, nil
}

func (s *DispatchService) push(ctx context.Context, c contracts.Client, msg *domain.Message) {
	data, _ := json.Marshal(domain.MessageEvent{
		Type:    domain.TypeMessageNew,
		Message: *msg,
	})
	if err := c.Send(ctx, data); err != nil {
		s.log.WarnContext(ctx, "dispatch - push - send failed", "user_id", c.UserID(), "err", err)
	}
}
