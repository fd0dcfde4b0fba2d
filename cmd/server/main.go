// Package main is the entrypoint for the image organizer API server.
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

	"github.com/Cavedragon13/ai-image-organizer/internal/ai"
	"github.com/Cavedragon13/ai-image-organizer/internal/api"
	"github.com/Cavedragon13/ai-image-organizer/internal/api/handler"
	mw "github.com/Cavedragon13/ai-image-organizer/internal/api/middleware"
	"github.com/Cavedragon13/ai-image-organizer/internal/api/response"
	"github.com/Cavedragon13/ai-image-organizer/internal/cache"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/internal/jobs"
	"github.com/Cavedragon13/ai-image-organizer/internal/metrics"
	"github.com/Cavedragon13/ai-image-organizer/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	})))
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Placement ledger (optional)
	var ledger *store.PostgresStore
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")
		ledger = store.NewPostgresStore(pool)
	} else {
		slog.Info("DATABASE_URL not set, placement ledger disabled")
	}

	// 3. Description cache and rate limiter (optional)
	var descCache cache.Cache = cache.NopCache{}
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
		descCache = redisCache
	} else {
		slog.Info("REDIS_URL not set, description cache and rate limiting disabled")
	}

	// 4. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	aiService := ai.NewService(aiProvider, descCache, cfg.AI.InferenceTimeout, cfg.Redis.DescriptionTTL)
	slog.Info("AI provider initialized", "provider", aiProvider.Name(), "model", cfg.AI.DefaultModel())

	// 5. Start job workers
	var recorder jobs.PlacementRecorder
	var dbCheck pinger
	if ledger != nil {
		recorder = ledger
		dbCheck = ledger
	}
	manager := jobs.NewManager(jobs.NewPipeline(aiService, aiService, recorder), cfg.Jobs)
	manager.Start()

	// 6. Build router with dependencies
	httpMetrics := metrics.NewMiddleware("image-organizer")
	prometheus.MustRegister(httpMetrics.Collectors()...)

	deps := api.Dependencies{
		Auth:    mw.NewAuth(cfg.Server.APIKeyHash),
		Metrics: httpMetrics,

		HealthHandler:    healthHandler(dbCheck, descCache, manager),
		MetricsHandler:   promhttp.Handler(),
		SubmitJobHandler: handler.NewSubmitJobHandler(manager, cfg.Jobs.Defaults),
		GetJobHandler:    handler.NewGetJobHandler(manager),
		ListJobsHandler:  handler.NewListJobsHandler(manager),
	}
	if cfg.Redis.URL != "" {
		deps.RateLimit = mw.NewRateLimit(descCache, cfg.Server.RateLimitPerMin)
	}
	if ledger != nil {
		deps.ListPlacementsHandler = handler.NewListPlacementsHandler(ledger)
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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

	// Graceful shutdown with timeout: stop HTTP first, then let queued jobs finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("job manager shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

type queueStats interface {
	Stats() jobs.Stats
}

// healthHandler checks the optional database and cache and reports the job
// queue. A nil database is reported as disabled, not degraded.
func healthHandler(db pinger, c pinger, q queueStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "disabled",
			"cache":    "ok",
		}

		if db != nil {
			checks["database"] = "ok"
			if err := db.Ping(r.Context()); err != nil {
				checks["database"] = "degraded"
			}
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] == "degraded" || checks["cache"] == "degraded"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
			"queue":    q.Stats(),
		})
	}
}
