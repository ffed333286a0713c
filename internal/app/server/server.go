package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"courier/internal/app/server/handlers"
	"courier/internal/config"
	"courier/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpSrv *http.Server
	log     *slog.Logger
}

type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Conversations *handlers.ConversationsHandler
	Health        *handlers.HealthHandler
	WS            *handlers.WSHandler
	AuthGate      func(http.Handler) http.Handler
}

func NewServer(cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Service.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.TracerMiddleware(cfg.Service.Name))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)

	// Public
	r.Get("/healthz", h.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/auth/register", h.Auth.Register)
	r.Post("/auth/login", h.Auth.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(h.AuthGate)
		r.Get("/users", h.Users.List)
		r.Get("/users/conversations", h.Users.Conversations)
		r.Get("/conversations/{id}/messages", h.Conversations.Messages)
	})

	// The ws handler runs its own auth gate so browser clients can pass
	// the credential as a query parameter.
	r.Get("/ws", h.WS.Handler)

	return &Server{
		log: log,
		httpSrv: &http.Server{
			Addr:        cfg.Service.Addr,
			Handler:     r,
			ReadTimeout: 15 * time.Second,
			// No WriteTimeout: it would kill long-lived websockets.
		},
	}
}

func (s *Server) Start() error {
	s.log.Info("server starting", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
