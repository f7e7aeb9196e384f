package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evseenkov/swapwear-backend/internal/config"
	"github.com/evseenkov/swapwear-backend/internal/db"
	"github.com/evseenkov/swapwear-backend/internal/http/handlers"
	"github.com/evseenkov/swapwear-backend/internal/http/router"
	"github.com/evseenkov/swapwear-backend/internal/logger"
	"github.com/evseenkov/swapwear-backend/internal/repository"
	"github.com/evseenkov/swapwear-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Log.WithError(err).Fatal("main: config load failed")
	}

	logger.Init(getLogLevel(cfg.Env))
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: database connection failed")
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		logger.Log.WithError(err).Fatal("main: migrations failed")
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	itemRepo := repository.NewItemRepository(conn)
	swapRepo := repository.NewSwapRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)

	// Сервисы
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(userRepo, tokens)
	itemService := service.NewItemService(itemRepo)
	swapService := service.NewSwapService(swapRepo, itemRepo, notificationService)
	moderationService := service.NewModerationService(itemRepo, swapRepo, notificationService)
	statsService := service.NewStatsService(userRepo, itemRepo, swapRepo)

	h := router.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Item:         handlers.NewItemHandler(itemService, moderationService),
		Swap:         handlers.NewSwapHandler(swapService),
		Admin:        handlers.NewAdminHandler(moderationService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Stats:        handlers.NewStatsHandler(statsService),
		Health:       handlers.NewHealthHandler(conn),
	}
	if cfg.Env == "development" {
		h.Seed = handlers.NewSeedHandler(service.NewSeedService(userRepo, itemRepo))
	}

	engine := router.New(cfg, tokens, h)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.HTTPPort).Info("main: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("main: server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("main: shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("main: graceful shutdown failed")
		os.Exit(1)
	}

	logger.Log.Info("main: server stopped")
}

func getLogLevel(env string) string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	if env == "production" {
		return "info"
	}
	return "debug"
}
