package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/config"
	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/handler"
	"github.com/zykor/contahub-sync-go/internal/infra/cache"
	"github.com/zykor/contahub-sync-go/internal/infra/contahub"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/infra/resilience"
	"github.com/zykor/contahub-sync-go/internal/infra/supabase"
	"github.com/zykor/contahub-sync-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("contahub_base_url", cfg.ContaHubBaseURL),
		zap.Int64("default_bar_id", cfg.DefaultBarID),
		zap.Duration("collect_delay_min", cfg.CollectDelayMin),
		zap.Duration("collect_delay_max", cfg.CollectDelayMax),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrent_runs", cfg.MaxConcurrentRuns),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "contahub-sync")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrentRuns,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrentRuns)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)
	upstream := contahub.NewClient(httpClient, cfg.ContaHubBaseURL, logger)

	// --- Services ---
	credCache := cache.New[domain.Credentials](cfg.CredentialsTTL)
	auth := service.NewAuthenticator(store, upstream, credCache, logger)

	delay := service.SleepDelay{}
	collector := service.NewCollector(upstream, store, delay, cfg.CollectDelayMin, cfg.CollectDelayMax, metrics, logger)
	upserter := service.NewUpserter(store, metrics, logger)
	processor := service.NewProcessor(store, upserter, metrics, logger)
	syncSvc := service.NewSyncService(auth, collector, processor, delay, bulkhead, cfg.RetroDayDelay, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(syncSvc, store, store, handler.Options{
		DefaultBarID: cfg.DefaultBarID,
		JWTSecret:    cfg.JWTSecret,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Minute, // a full run waits out the inter-call pauses
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
