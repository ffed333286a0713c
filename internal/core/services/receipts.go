package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"
	"courier/internal/platform/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReceiptService bulk-advances messages of one conversation direction to
// "read" and notifies the original sender if reachable.
type ReceiptService struct {
	log      *slog.Logger
	registry contracts.Registry
	repo     domain.MessageRepository
}

func NewReceiptService(log *slog.Logger, registry contracts.Registry, repo domain.MessageRepository) *ReceiptService {
	return &ReceiptService{log: log, registry: registry, repo: repo}
}

// MarkRead marks every message from fromID to readerID as read. Idempotent:
// a second call with nothing left to update touches zero rows and still
// succeeds. The sender is notified even when zero rows changed — "reader is
// caught up" holds either way.
func (s *ReceiptService) MarkRead(ctx context.Context, readerID, fromID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "ReceiptService.MarkRead", trace.WithAttributes(
		attribute.String("reader_id", readerID),
		attribute.String("from_id", fromID),
	))
	defer span.End()

	reader, err := uuid.Parse(readerID)
	if err != nil {
		return 0, fmt.Errorf("%w: reader_id", domain.ErrValidation)
	}
	from, err := uuid.Parse(fromID)
	if err != nil {
		return 0, fmt.Errorf("%w: from_user_id", domain.ErrValidation)
	}

	updated, err := s.repo.MarkConversationRead(ctx, from, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk update failed")
		s.log.ErrorContext(ctx, "receipts - mark read - update failed", "reader_id", readerID, "from_id", fromID, "err", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	metrics.ReadReceipts.Inc()
	span.SetAttributes(attribute.Int64("messages.updated", updated))

	if sender, ok := s.registry.Resolve(fromID); ok {
		data, _ := json.Marshal(domain.ReadEvent{
			Type:     domain.TypeMessageRead,
			ByUserID: readerID,
		})
		if err := sender.Send(ctx, data); err != nil {
			s.log.WarnContext(ctx, "receipts - mark read - notify failed", "from_id", fromID, "err", err)
		}
	}

	s.log.InfoContext(ctx, "receipts - mark read - conversation caught up",
		"reader_id", readerID, "from_id", fromID, "updated", updated)
	return updated, nil
}
