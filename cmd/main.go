package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courier/internal/app/registry"
	"courier/internal/app/server"
	"courier/internal/app/server/handlers"
	"courier/internal/config"
	"courier/internal/core/services"
	"courier/internal/platform/logger"
	"courier/internal/platform/telemetry"
	"courier/internal/plugins/postgres"
	redisPlugin "courier/internal/plugins/redis"
	"courier/pkg/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		if otelShutdown == nil {
			return
		}
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	pdb, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "err", err)
		os.Exit(1)
	}
	defer pdb.Close()

	rdb, err := redisPlugin.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pdb)
	messageRepo := postgres.NewMessageRepository(pdb)
	lastSeen := redisPlugin.NewRedisLastSeenStore(rdb)

	// Core
	hub := registry.NewRegistry()
	tokenSvc := services.NewTokenService(cfg.JWTSecret)
	userSvc := services.NewUserService(log, userRepo)
	presenceSvc := services.NewPresenceService(log, hub)
	dispatchSvc := services.NewDispatchService(log, hub, messageRepo)
	typingSvc := services.NewTypingService(log, hub)
	receiptSvc := services.NewReceiptService(log, hub, messageRepo)
	gatewaySvc := services.NewGatewayService(log, hub, dispatchSvc, typingSvc, receiptSvc, presenceSvc)

	srv := server.NewServer(cfg, log, server.Handlers{
		Auth:          handlers.NewAuthHandler(userSvc, tokenSvc),
		Users:         handlers.NewUsersHandler(userRepo, messageRepo, presenceSvc, lastSeen),
		Conversations: handlers.NewConversationsHandler(messageRepo),
		Health:        handlers.NewHealthHandler(pdb, rdb),
		WS:            handlers.NewWSHandler(hub, gatewaySvc, presenceSvc, tokenSvc, lastSeen, cfg.Service.AllowedOrigins),
		AuthGate:      middleware.AuthMiddleware(tokenSvc),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
	log.Info("application stopped")
}
