// Package main is the entrypoint for the LicitaHub API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urbanosolucoes/licitahub/internal/ai"
	"github.com/urbanosolucoes/licitahub/internal/api"
	"github.com/urbanosolucoes/licitahub/internal/api/handler"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/cache"
	"github.com/urbanosolucoes/licitahub/internal/config"
	"github.com/urbanosolucoes/licitahub/internal/notify"
	"github.com/urbanosolucoes/licitahub/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Create store, mailer and services
	pgStore := store.NewPostgresStore(pool)
	mailer := notify.NewSMTPMailer(cfg.SMTP)
	aiService := ai.NewService(aiProvider, pgStore, cfg.AI.InferenceTimeout)

	loc, err := time.LoadLocation(cfg.Notify.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Notify.Timezone, err)
	}
	dispatcher := notify.NewDispatcher(mailer, cfg.Notify.AppBaseURL)
	scanner := notify.NewScanner(pgStore, dispatcher, loc)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore, redisCache)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	authHandler := handler.NewAuthHandler(pgStore, redisCache, mailer, cfg.Redis.SessionTTL)
	reportsHandler := handler.NewReportsHandler(pgStore)
	archiveHandler := handler.NewArchiveHandler(pgStore)
	adminHandler := handler.NewAdminHandler(pgStore, mailer, scanner)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: healthHandler(pgStore, redisCache),

		RegisterHandler: authHandler.Register,
		LoginHandler:    authHandler.Login,
		LogoutHandler:   authHandler.Logout,
		RecoverHandler:  authHandler.Recover,

		AnalyzeHandler:    handler.NewAnalyzeHandler(aiService),
		CrossCheckHandler: handler.NewCrossCheckHandler(aiService),
		AskHandler:        handler.NewAskHandler(aiService),

		ListReports:        reportsHandler.List,
		GetReport:          reportsHandler.Get,
		UpdateReportStatus: reportsHandler.UpdateStatus,
		DeleteReport:       reportsHandler.Delete,

		CalendarHandler: handler.NewCalendarHandler(pgStore),

		ArchiveSections: archiveHandler.Sections,
		ArchiveUpload:   archiveHandler.Upload,
		ArchiveList:     archiveHandler.List,
		ArchiveDelete:   archiveHandler.Delete,

		AdminListUsers:        adminHandler.ListUsers,
		AdminUpdatePlan:       adminHandler.UpdatePlan,
		AdminSetCredits:       adminHandler.SetCredits,
		AdminTestEmail:        adminHandler.TestEmail,
		AdminRunDeadlineCheck: adminHandler.RunDeadlineCheck,
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
