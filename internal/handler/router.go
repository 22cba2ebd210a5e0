package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/port"
	"github.com/zykor/contahub-sync-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Options configures the router surface.
type Options struct {
	// DefaultBarID fills bar_id when a request omits it.
	DefaultBarID int64
	// JWTSecret enables bearer validation on /v1 when non-empty.
	JWTSecret string
}

// NewRouter creates the HTTP router with all routes and middleware. The
// sync endpoints are called by the scheduler and the admin frontend, so
// CORS is permissive and OPTIONS preflights always succeed.
func NewRouter(svc *service.SyncService, raw port.RawStore, health port.HealthChecker, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(health, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(ServiceAuthMiddleware(opts.JWTSecret, logger))
		}

		// =============================================
		// Ingestion pipeline
		// =============================================
		r.Post("/sync", syncHandler(svc, opts.DefaultBarID, logger))
		r.Post("/sync/retroactive", retroactiveHandler(svc, opts.DefaultBarID, logger))

		// =============================================
		// Raw snapshot inspection + counters
		// =============================================
		r.Get("/raw", rawSnapshotsHandler(raw, logger))
		r.Get("/metrics/sync", syncMetricsHandler(metrics))
	})

	return r
}

func healthzHandler(health port.HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				logger.Warn("healthz: store unreachable", zap.Error(err))
				status["status"] = "degraded"
				status["store"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["store"] = "ok"
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
