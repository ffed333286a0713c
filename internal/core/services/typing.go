package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"
	"courier/internal/platform/metrics"
)

// TypingService is a stateless pass-through for typing signals. Nothing is
// queued or persisted; a signal for an offline receiver is dropped. Stopping
// after inactivity is the client's own timer.
type TypingService struct {
	log      *slog.Logger
	registry contracts.Registry
}

func NewTypingService(log *slog.Logger, registry contracts.Registry) *TypingService {
	return &TypingService{log: log, registry: registry}
}

func (s *TypingService) Start(ctx context.Context, fromID, toID string) {
	s.relay(ctx, domain.TypeTypingStart, fromID, toID)
}

func (s *TypingService) Stop(ctx context.Context, fromID, toID string) {
	s.relay(ctx, domain.TypeTypingStop, fromID, toID)
}

func (s *TypingService) relay(ctx context.Context, kind, fromID, toID string) {
	c, ok := s.registry.Resolve(toID)
	if !ok {
		return
	}
	data, _ := json.Marshal(domain.TypingEvent{
		Type:       kind,
		FromUserID: fromID,
	})
	if err := c.Send(ctx, data); err != nil {
		s.log.WarnContext(ctx, "typing - relay - send failed", "to", toID, "err", err)
		return
	}
	metrics.TypingSignals.Inc()
}
