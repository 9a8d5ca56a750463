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

	"github.com/kiranshivaraju/crisisapi/internal/api"
	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/cache"
	"github.com/kiranshivaraju/crisisapi/internal/config"
	"github.com/kiranshivaraju/crisisapi/internal/mail"
	"github.com/kiranshivaraju/crisisapi/internal/openapi"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

const migrationsDir = "migrations"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "base_url", cfg.Server.PublicBaseURL)

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
	if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache (sessions, rate limits)
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store and mailer
	pgStore := store.NewPostgresStore(pool)
	mailer := mail.NewSMTPMailer(cfg.Mail, cfg.Server.PublicBaseURL)

	// 6. Build router with dependencies
	deps := api.NewDependencies(cfg, pgStore, redisCache, mailer)
	deps.HealthHandler = healthHandler(pgStore, redisCache)

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

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
			slog.Warn("database ping failed", "error", err)
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			slog.Warn("cache ping failed", "error", err)
			checks["cache"] = "degraded"
		}

		status, code := "healthy", http.StatusOK
		if checks["database"] != "ok" || checks["cache"] != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		response.WriteJSON(w, code, map[string]any{
			"status":    status,
			"service":   openapi.Title,
			"version":   openapi.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  checks,
			"endpoints": map[string]string{
				"documentation": security.DocsPath,
				"crises":        "/api/crises",
			},
		})
	}
}
