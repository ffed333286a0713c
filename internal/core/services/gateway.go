package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GatewayService routes the frames of one live connection to the dispatcher,
// the typing relay, the receipt updater and the presence broadcaster. A bad
// frame answers only the offending connection; it never closes it.
type GatewayService struct {
	log      *slog.Logger
	registry contracts.Registry
	dispatch *DispatchService
	typing   *TypingService
	receipts *ReceiptService
	presence *PresenceService
}

func NewGatewayService(
	log *slog.Logger,
	registry contracts.Registry,
	dispatch *DispatchService,
	typing *TypingService,
	receipts *ReceiptService,
	presence *PresenceService,
) *GatewayService {
	return &GatewayService{
		log:      log,
		registry: registry,
		dispatch: dispatch,
		typing:   typing,
		receipts: receipts,
		presence: presence,
	}
}

func (g *GatewayService) HandleFrame(ctx context.Context, userID string, raw []byte) {
	ctx, span := tracer.Start(ctx, "GatewayService.HandleFrame", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int("payload_size", len(raw)),
	))
	defer span.End()

	var frame domain.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		span.RecordError(err)
		g.sendError(ctx, userID, "bad_frame", "malformed frame")
		return
	}
	span.SetAttributes(attribute.String("frame.type", frame.Type))

	switch frame.Type {
	case domain.TypeMessageSend:
		g.handleSend(ctx, userID, frame.Data)
	case domain.TypeTypingStart, domain.TypeTypingStop:
		g.handleTyping(ctx, userID, frame.Type, frame.Data)
	case domain.TypeMessageRead:
		g.handleRead(ctx, userID, frame.Data)
	case domain.TypePresenceGet:
		g.presence.SendSnapshot(ctx, userID)
	default:
		g.sendError(ctx, userID, "unknown_type", "unknown frame type: "+frame.Type)
	}
}

func (g *GatewayService) handleSend(ctx context.Context, userID string, data json.RawMessage) {
	var req domain.SendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.ack(ctx, userID, domain.SendAck{Type: domain.TypeMessageAck, OK: false, Code: "bad_payload", Error: "malformed payload"})
		return
	}
	msg, err := g.dispatch.Send(ctx, userID, req)
	if err != nil {
		code := "send_failed"
		switch {
		case errors.Is(err, domain.ErrValidation):
			code = "invalid_payload"
		case errors.Is(err, domain.ErrPersistence):
			code = "store_unavailable"
		}
		g.ack(ctx, userID, domain.SendAck{Type: domain.TypeMessageAck, OK: false, Code: code, Error: err.Error()})
		return
	}
	g.ack(ctx, userID, domain.SendAck{Type: domain.TypeMessageAck, OK: true, Message: msg})
}

func (g *GatewayService) handleTyping(ctx context.Context, userID, kind string, data json.RawMessage) {
	var req domain.TypingRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ReceiverID == "" {
		g.sendError(ctx, userID, "bad_payload", "typing signal needs receiver_id")
		return
	}
	if kind == domain.TypeTypingStart {
		g.typing.Start(ctx, userID, req.ReceiverID)
	} else {
		g.typing.Stop(ctx, userID, req.ReceiverID)
	}
}

func (g *GatewayService) handleRead(ctx context.Context, userID string, data json.RawMessage) {
	var req domain.ReadRequest
	if err := json.Unmarshal(data, &req); err != nil || req.FromUserID == "" {
		g.sendError(ctx, userID, "bad_payload", "read receipt needs from_user_id")
		return
	}
	if _, err := g.receipts.MarkRead(ctx, userID, req.FromUserID); err != nil {
		g.sendError(ctx, userID, "read_failed", err.Error())
	}
}

// ack delivers the send result to the caller's own connection.
func (g *GatewayService) ack(ctx context.Context, userID string, ack domain.SendAck) {
	c, ok := g.registry.Resolve(userID)
	if !ok {
		return
	}
	data, _ := json.Marshal(ack)
	if err := c.Send(ctx, data); err != nil {
		g.log.WarnContext(ctx, "gateway - ack - send failed", "user_id", userID, "err", err)
	}
}

func (g *GatewayService) sendError(ctx context.Context, userID, code, msg string) {
	c, ok := g.registry.Resolve(userID)
	if !ok {
		return
	}
	data, _ := json.Marshal(domain.ErrorEvent{Type: domain.TypeError, Code: code, Message: msg})
	_ = c.Send(ctx, data)
}
