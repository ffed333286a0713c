package handlers

import (
	"context"
	"net/http"
	"slices"

	"courier/internal/app/server/ws"
	"courier/internal/core/contracts"
	"courier/internal/core/services"
	"courier/internal/platform/logger"
	"courier/internal/platform/metrics"
	"courier/pkg/middleware"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WSHandler struct {
	registry contracts.Registry
	gateway  *services.GatewayService
	presence *services.PresenceService
	verifier contracts.CredentialVerifier
	lastSeen contracts.LastSeenStore
	origins  []string
}

func NewWSHandler(
	registry contracts.Registry,
	gateway *services.GatewayService,
	presence *services.PresenceService,
	verifier contracts.CredentialVerifier,
	lastSeen contracts.LastSeenStore,
	origins []string,
) *WSHandler {
	return &WSHandler{
		registry: registry,
		gateway:  gateway,
		presence: presence,
		verifier: verifier,
		lastSeen: lastSeen,
		origins:  origins,
	}
}

// Handler is the connection attempt entry point: verify the credential,
// upgrade, admit into the registry, announce presence, then pump frames
// until the transport closes.
func (s *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())

	// Auth gate. A bad credential rejects the attempt before any
	// registry mutation.
	token := middleware.BearerToken(r)
	if token == "" {
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}
	userID, err := s.verifier.Verify(token)
	if err != nil {
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		log.WarnContext(r.Context(), "ws handler - credential rejected", "err", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(s.origins) == 0 || slices.Contains(s.origins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "err", err)
		cancel()
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})
	socket := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, socket, userID)

	// Admit evicts any previous connection for this identity; the online
	// set changes, so everyone hears about it.
	s.registry.Admit(client)
	metrics.ConnectionsTotal.WithLabelValues("admitted").Inc()
	_ = s.lastSeen.Touch(ctx, userID)
	s.presence.BroadcastAll(ctx)
	log.InfoContext(r.Context(), "ws handler - connection admitted", "user_id", userID, "conn_id", client.ConnID())

	defer func() {
		s.registry.Remove(client.ConnID())
		client.Close()
		_ = s.lastSeen.Touch(sessionCtx, userID)
		s.presence.BroadcastAll(sessionCtx)
		cancel()
		log.InfoContext(sessionCtx, "ws handler - connection closed", "user_id", userID, "conn_id", client.ConnID())
	}()

	socket.ReadLoop(func(data []byte) {
		go func(frame []byte) {
			s.gateway.HandleFrame(ctx, userID, frame)
		}(data)
	})
}
