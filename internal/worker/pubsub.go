package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/cache"
)

// PubSubHandler handles Pub/Sub messages for the maintenance worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	warmJob          *WarmJob
	store            cache.Store
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	WarmJob          *WarmJob
	// Store is the persistent cache tier swept by cache_sweep jobs.
	Store  cache.Store
	Logger zerolog.Logger
}

// MaintenanceMessage represents a cache maintenance job message.
type MaintenanceMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		warmJob:          cfg.WarmJob,
		store:            cfg.Store,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job MaintenanceMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case "cache_warm":
		err = h.handleCacheWarm(ctx)
	case "cache_sweep":
		err = h.handleCacheSweep(ctx)
	case "health_check":
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleCacheWarm(ctx context.Context) error {
	h.logger.Info().Msg("starting cache warm")

	result := h.warmJob.Run(ctx)

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("failed", result.Failed).
		Int("total_legs", result.TotalLegs).
		Msg("cache warm completed")

	// Consider it successful if more than half the legs warmed.
	if result.Failed > result.Warmed {
		return fmt.Errorf("too many warm failures: %d/%d", result.Failed, result.TotalLegs)
	}

	return nil
}

func (h *PubSubHandler) handleCacheSweep(ctx context.Context) error {
	if h.store == nil {
		h.logger.Warn().Msg("no persistent store configured; skipping sweep")
		return nil
	}

	deleted, err := cache.SweepExpired(ctx, h.store, h.logger)
	if err != nil {
		return fmt.Errorf("sweeping expired entries: %w", err)
	}

	h.logger.Info().Int("deleted", deleted).Msg("cache sweep completed")
	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	// Warm a single short leg to verify provider connectivity end to end.
	healthCheckJob := NewWarmJob(WarmJobConfig{
		Config: WarmConfig{
			Targets: []WarmTarget{
				{
					Name:     "health-check",
					Priority: 1,
					Stops: []Point{
						{Lat: 52.3791, Lon: 4.9003}, // Amsterdam Centraal
						{Lat: 52.3731, Lon: 4.8926}, // Dam Square
					},
					Modes: []string{"walk"},
				},
			},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Logger:     h.logger,
		Provider:   h.warmJob.provider,
		Directions: h.warmJob.dirCache,
		Engine:     h.warmJob.engine,
	})

	result := healthCheckJob.Run(ctx)

	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
