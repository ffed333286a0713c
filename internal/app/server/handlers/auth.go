package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"courier/internal/core/domain"
	"courier/internal/core/services"
	"courier/internal/platform/logger"
)

type AuthHandler struct {
	userSvc  *services.UserService
	tokenSvc *services.TokenService
}

func NewAuthHandler(u *services.UserService, t *services.TokenService) *AuthHandler {
	return &AuthHandler{userSvc: u, tokenSvc: t}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			http.Error(w, "missing fields", http.StatusBadRequest)
		case errors.Is(err, domain.ErrEmailTaken):
			http.Error(w, "email already in use", http.StatusConflict)
		default:
			log.ErrorContext(r.Context(), "auth handler - register failed", "err", err)
			http.Error(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}
	token, err := h.tokenSvc.Generate(user.ID.String())
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - token generation failed", "err", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
	log.InfoContext(r.Context(), "auth handler - registered", "user_id", user.ID.String())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.ErrorContext(r.Context(), "auth handler - login failed", "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	token, err := h.tokenSvc.Generate(user.ID.String())
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - token generation failed", "err", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
