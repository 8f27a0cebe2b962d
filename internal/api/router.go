// Package api provides the HTTP API for TripWeaver.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/api/handler"
	"github.com/tripweaver/tripweaver/internal/api/middleware"
	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/geocode"
	"github.com/tripweaver/tripweaver/internal/planner"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Trips   *planner.Service
	Geocode *geocode.Service

	// ReadyCheck is consulted by GET /v1/ops/ready (typically a database
	// ping). Nil means always ready.
	ReadyCheck func(ctx context.Context) error

	// StatsCaches are reported by GET /v1/ops/cache/stats.
	StatsCaches []*cache.TwoTier
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripweaver-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyCheck, cfg.StatsCaches...)
	planHandler := handler.NewPlanHandler(cfg.Trips)
	geocodeHandler := handler.NewGeocodeHandler(cfg.Geocode)

	// Planning fans out to the directions provider; keep it on the strict
	// limiter.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/cache/stats", opsHandler.CacheStats)
		})

		// Trip planning
		r.Route("/trips", func(r chi.Router) {
			r.With(expensiveRateLimit, middleware.RequireJSON).Post("/{tripId}/plan", planHandler.PlanTrip)
			r.With(standardRateLimit).Get("/{tripId}", planHandler.GetTrip)
			r.With(standardRateLimit).Delete("/{tripId}", planHandler.DeleteTrip)
		})

		// Place lookup
		r.With(expensiveRateLimit).Get("/geocode", geocodeHandler.Geocode)
	})

	return r
}
