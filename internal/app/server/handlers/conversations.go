package handlers

import (
	"net/http"

	"courier/internal/core/domain"
	"courier/internal/platform/logger"
	"courier/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ConversationsHandler struct {
	messages domain.MessageRepository
}

func NewConversationsHandler(messages domain.MessageRepository) *ConversationsHandler {
	return &ConversationsHandler{messages: messages}
}

// Messages returns the full history between the caller and the peer in the
// path, both directions, created_at ascending, unfiltered by status.
func (h *ConversationsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	caller, err := uuid.Parse(callerID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	peer, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}
	msgs, err := h.messages.GetConversation(r.Context(), caller, peer)
	if err != nil {
		log.ErrorContext(r.Context(), "conversations handler - history failed", "peer_id", peer.String(), "err", err)
		http.Error(w, "failed to fetch messages", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
