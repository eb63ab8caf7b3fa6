package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/caseledger/internal/adapter/http/handler"
	"github.com/iho/caseledger/internal/adapter/http/middleware"
	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/metrics"
	"github.com/iho/caseledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CaseHandler    *handler.CaseHandler
	PaymentHandler *handler.PaymentHandler
	ExpenseHandler *handler.ExpenseHandler
	ReportHandler  *handler.ReportHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler

	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	CacheInvalidator middleware.CacheInvalidator

	// TokenVerifier enables bearer authentication when set.
	TokenVerifier middleware.TokenVerifier

	// Metrics and Gatherer enable request metrics and GET /metrics.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}
		if cfg.IdempotencyStore != nil {
			var replays prometheus.Counter
			if cfg.Metrics != nil {
				replays = cfg.Metrics.IdempotentReplays
			}
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, replays).WithTTL(cfg.IdempotencyTTL).Wrap)
		}
		if cfg.CacheInvalidator != nil {
			r.Use(middleware.InvalidateOnWrite(cfg.CacheInvalidator))
		}

		viewer := requireRole(cfg, domain.RoleViewer)
		operator := requireRole(cfg, domain.RoleOperator)
		admin := requireRole(cfg, domain.RoleAdmin)

		// Cases
		r.Route("/cases", func(r chi.Router) {
			r.With(operator).Post("/", cfg.CaseHandler.Create)
			r.With(viewer).Get("/", cfg.CaseHandler.List)
			r.With(viewer).Get("/{id}", cfg.CaseHandler.Get)
			r.With(operator).Put("/{id}", cfg.CaseHandler.Update)
			r.With(operator).Patch("/{id}/status", cfg.CaseHandler.SetStatus)
			r.With(admin).Delete("/{id}", cfg.CaseHandler.Remove)
			r.With(viewer).Get("/{id}/summary", cfg.CaseHandler.Summary)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.With(operator).Post("/", cfg.PaymentHandler.Create)
			r.With(admin).Delete("/{id}", cfg.PaymentHandler.Delete)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.With(operator).Post("/", cfg.ExpenseHandler.Create)
			r.With(admin).Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Use(viewer)
			r.Get("/monthly", cfg.ReportHandler.Monthly)
			r.Get("/monthly/export", cfg.ReportHandler.MonthlyExport)
			r.Get("/daily", cfg.ReportHandler.Daily)
			r.Get("/daily/export", cfg.ReportHandler.DailyExport)
			r.Get("/pending", cfg.ReportHandler.Pending)
		})

		// Maintenance
		r.With(admin).Post("/admin/backfill/legacy-manual", cfg.AdminHandler.Backfill)
	})

	return r
}

// requireRole is a no-op when authentication is disabled.
func requireRole(cfg RouterConfig, role domain.Role) func(http.Handler) http.Handler {
	if cfg.TokenVerifier == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireRole(role)
}
