// Package main is the entrypoint for the IntentCrawl API server.
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

	"github.com/joho/godotenv"

	"github.com/seekerhq/intentcrawl/internal/ai"
	"github.com/seekerhq/intentcrawl/internal/api"
	"github.com/seekerhq/intentcrawl/internal/api/handler"
	mw "github.com/seekerhq/intentcrawl/internal/api/middleware"
	"github.com/seekerhq/intentcrawl/internal/api/response"
	"github.com/seekerhq/intentcrawl/internal/cache"
	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/internal/crawler"
	"github.com/seekerhq/intentcrawl/internal/knowledge"
	"github.com/seekerhq/intentcrawl/internal/scraper"
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
	// 1. Load config — .env is optional, env vars win; fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := knowledge.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := knowledge.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
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

	// 5. Create the relevance oracle
	oracle, err := ai.NewOracle(cfg.AI)
	if err != nil {
		return fmt.Errorf("create relevance oracle: %w", err)
	}
	slog.Info("relevance oracle initialized", "provider", oracle.Name())

	// 6. Assemble the crawl scheduler and job manager
	store := knowledge.NewPostgresStore(pool)
	fetcher := scraper.NewHTTPFetcher(cfg.Crawler)
	router := crawler.NewRouter(oracle, cfg.AI.InferenceTimeout)
	thresholds := crawler.Thresholds{
		AutoAdmit: cfg.Crawler.AutoAdmitThreshold,
		AskHuman:  cfg.Crawler.AskHumanThreshold,
	}
	scheduler := crawler.NewScheduler(fetcher, store, router, thresholds, cfg.Crawler.Delay)
	manager := crawler.NewManager(scheduler, redisCache, cfg.Crawler)

	// 7. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.KeyHashes)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Auth.RateLimitPerMinute)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: healthHandler(store, redisCache),

		CreateJobHandler: handler.NewCreateJobHandler(manager),
		ListJobsHandler:  handler.NewListJobsHandler(manager),
		GetJobHandler:    handler.NewGetJobHandler(manager),
		DeleteJobHandler: handler.NewDeleteJobHandler(manager),
		StreamHandler:    handler.NewStreamHandler(manager),
		SteerHandler:     handler.NewSteerHandler(manager),

		KnowledgeSearchHandler: handler.NewKnowledgeSearchHandler(store),
		KnowledgeStatsHandler:  handler.NewKnowledgeStatsHandler(store),
	}

	apiRouter := api.NewRouter(deps)

	// 8. Start HTTP server. WriteTimeout stays zero: SSE streams are
	// long-lived and must not be cut off by the server.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     apiRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
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
func healthHandler(s knowledge.Store, c cache.Cache) http.HandlerFunc {
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
