package handlers

import (
	"net/http"
	"sort"
	"time"

	"courier/internal/core/contracts"
	"courier/internal/core/domain"
	"courier/internal/core/services"
	"courier/internal/platform/logger"
	"courier/pkg/middleware"

	"github.com/google/uuid"
)

type UsersHandler struct {
	users    domain.UserRepository
	messages domain.MessageRepository
	presence *services.PresenceService
	lastSeen contracts.LastSeenStore
}

func NewUsersHandler(
	users domain.UserRepository,
	messages domain.MessageRepository,
	presence *services.PresenceService,
	lastSeen contracts.LastSeenStore,
) *UsersHandler {
	return &UsersHandler{users: users, messages: messages, presence: presence, lastSeen: lastSeen}
}

type userView struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// List returns every account except the caller, newest first, with live
// presence and the last-seen stamp for offline peers.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
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
	users, err := h.users.ListUsersExcept(r.Context(), caller)
	if err != nil {
		log.ErrorContext(r.Context(), "users handler - list failed", "err", err)
		http.Error(w, "failed to fetch users", http.StatusInternalServerError)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		v := userView{
			ID:       u.ID.String(),
			Username: u.Username,
			Email:    u.Email,
			Online:   h.presence.IsOnline(u.ID.String()),
		}
		if !v.Online {
			if ts, err := h.lastSeen.LastSeen(r.Context(), v.ID); err == nil && !ts.IsZero() {
				v.LastSeen = &ts
			}
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

type conversationView struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	LastMessage *domain.Message `json:"last_message"`
}

// Conversations returns per-peer last-message summaries sorted by recency;
// peers never talked to sort last.
func (h *UsersHandler) Conversations(w http.ResponseWriter, r *http.Request) {
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
	users, err := h.users.ListUsersExcept(r.Context(), caller)
	if err != nil {
		log.ErrorContext(r.Context(), "users handler - conversations - list failed", "err", err)
		http.Error(w, "failed to fetch conversations", http.StatusInternalServerError)
		return
	}
	views := make([]conversationView, 0, len(users))
	for _, u := range users {
		v := conversationView{
			ID:       u.ID.String(),
			Username: u.Username,
			Email:    u.Email,
		}
		last, err := h.messages.GetLastMessage(r.Context(), caller, u.ID)
		if err == nil {
			v.LastMessage = last
		} else if err != domain.ErrMessageNotFound {
			log.WarnContext(r.Context(), "users handler - conversations - last message lookup failed", "peer_id", v.ID, "err", err)
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].LastMessage, views[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	writeJSON(w, http.StatusOK, views)
}
