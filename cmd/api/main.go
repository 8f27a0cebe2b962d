// Package main provides the entrypoint for the TripWeaver API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/api"
	"github.com/tripweaver/tripweaver/internal/api/middleware"
	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/database"
	"github.com/tripweaver/tripweaver/internal/directions/google"
	"github.com/tripweaver/tripweaver/internal/geocode"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/render"
	"github.com/tripweaver/tripweaver/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripweaver-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripWeaver API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure cache schema")
	}

	// Engine thresholds and the two-tier caches
	engine := config.EngineFromEnv()
	store := cache.NewPostgresStore(pool)

	if deleted, sweepErr := cache.SweepExpired(ctx, store, log); sweepErr != nil {
		log.Warn().Err(sweepErr).Msg("startup cache sweep failed")
	} else if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("startup cache sweep done")
	}

	directionsCache := cache.NewTwoTier(cache.TwoTierConfig{
		Name:       "directions",
		Store:      store,
		Logger:     log,
		TTL:        engine.CacheTTL,
		MemorySize: engine.DirectionsMemoryCacheSize,
	})
	geocodeCache := cache.NewTwoTier(cache.TwoTierConfig{
		Name:       "geocode",
		Store:      store,
		Logger:     log,
		TTL:        engine.CacheTTL,
		MemorySize: engine.GeocodeMemoryCacheSize,
	})
	placeStore := cache.NewPlaceStore(store, log)

	// Directions provider
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - routing requests will fail")
	}
	provider := google.NewClient(google.ClientConfig{
		APIKey: apiKey,
		Logger: log,
	})

	// The server renders to an in-memory overlay; clients draw from the
	// polylines in the response.
	overlay := render.NewMemoryOverlay()

	trips := planner.NewService(func(onError func(planner.RoutingError)) *planner.Reconciler {
		return planner.NewReconciler(planner.ReconcilerConfig{
			Provider:       provider,
			Overlay:        overlay,
			Directions:     directionsCache,
			Engine:         engine,
			Logger:         log,
			OnRoutingError: onError,
		})
	})
	log.Info().Msg("trip planner initialized")

	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Provider: provider,
		Cache:    geocodeCache,
		Places:   placeStore,
		Logger:   log,
	})
	log.Info().Msg("geocode service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Trips:       trips,
		Geocode:     geocodeService,
		ReadyCheck: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
		StatsCaches: []*cache.TwoTier{directionsCache, geocodeCache},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
