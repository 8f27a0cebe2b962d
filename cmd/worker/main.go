// Package main provides the entrypoint for the TripWeaver maintenance
// worker. It warms the directions cache for popular corridors and sweeps
// expired entries, driven by Pub/Sub when configured or by a local ticker
// otherwise.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/database"
	"github.com/tripweaver/tripweaver/internal/directions/google"
	"github.com/tripweaver/tripweaver/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripweaver-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripWeaver worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure cache schema")
	}

	engine := config.EngineFromEnv()
	store := cache.NewPostgresStore(pool)

	directionsCache := cache.NewTwoTier(cache.TwoTierConfig{
		Name:       "directions",
		Store:      store,
		Logger:     log,
		TTL:        engine.CacheTTL,
		MemorySize: engine.DirectionsMemoryCacheSize,
	})

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - warm jobs will fail")
	}
	provider := google.NewClient(google.ClientConfig{
		APIKey: apiKey,
		Logger: log,
	})

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Config:     worker.DefaultWarmConfig(),
		Logger:     log,
		Provider:   provider,
		Directions: directionsCache,
		Engine:     engine,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Job source: Pub/Sub when configured, otherwise a local schedule.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			WarmJob:          warmJob,
			Store:            store,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured; running on local schedule")
		go runLocalSchedule(ctx, log, warmJob, store)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// runLocalSchedule sweeps and warms on fixed intervals. Used in development
// and in deployments without Pub/Sub.
func runLocalSchedule(ctx context.Context, log zerolog.Logger, warmJob *worker.WarmJob, store cache.Store) {
	// Sweep once on startup, then periodically.
	if _, err := cache.SweepExpired(ctx, store, log); err != nil {
		log.Warn().Err(err).Msg("startup cache sweep failed")
	}

	warmTicker := time.NewTicker(6 * time.Hour)
	defer warmTicker.Stop()
	sweepTicker := time.NewTicker(time.Hour)
	defer sweepTicker.Stop()

	warmJob.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-warmTicker.C:
			warmJob.Run(ctx)
		case <-sweepTicker.C:
			if _, err := cache.SweepExpired(ctx, store, log); err != nil {
				log.Warn().Err(err).Msg("cache sweep failed")
			}
		}
	}
}
