package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/render"
)

// WarmJob pre-routes popular corridors so interactive passes hit the cache.
// Each corridor runs as a throwaway planning pass over the shared directions
// cache, which keys the warmed entries exactly as live traffic does.
type WarmJob struct {
	config WarmConfig
	logger zerolog.Logger

	provider directions.Provider
	dirCache *cache.TwoTier
	engine   config.Engine

	metrics *WarmMetrics
}

// WarmMetrics tracks warm job statistics.
type WarmMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns  int64
	LegsWarmed int64
	LegsFailed int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config     WarmConfig
	Logger     zerolog.Logger
	Provider   directions.Provider
	Directions *cache.TwoTier
	Engine     config.Engine
}

// NewWarmJob creates a new cache warm job.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	warmConfig := cfg.Config
	if len(warmConfig.Targets) == 0 {
		warmConfig = DefaultWarmConfig()
	}
	if warmConfig.Concurrency <= 0 {
		warmConfig.Concurrency = 3
	}
	if warmConfig.Timeout <= 0 {
		warmConfig.Timeout = 30 * time.Second
	}
	engine := cfg.Engine
	if engine == (config.Engine{}) {
		engine = config.DefaultEngine()
	}

	return &WarmJob{
		config:   warmConfig,
		logger:   cfg.Logger,
		provider: cfg.Provider,
		dirCache: cfg.Directions,
		engine:   engine,
		metrics:  &WarmMetrics{},
	}
}

// WarmResult contains the result of a warm run.
type WarmResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	TotalLegs int
	Warmed    int
	Failed    int
	Errors    []WarmError
}

// WarmError represents a leg that could not be warmed.
type WarmError struct {
	Target string
	Leg    int
	Error  string
}

// Run warms all configured corridors.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime: startTime,
		TotalLegs: j.config.TotalLegs(),
	}

	j.logger.Info().
		Int("targets", len(j.config.Targets)).
		Int("total_legs", result.TotalLegs).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm job")

	targetsChan := make(chan WarmTarget, len(j.config.Targets))
	resultsChan := make(chan targetResult, len(j.config.Targets))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, targetsChan, resultsChan)
		}()
	}

	for _, target := range j.config.Targets {
		targetsChan <- target
	}
	close(targetsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		result.Warmed += tr.warmed
		result.Failed += tr.failed
		result.Errors = append(result.Errors, tr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("failed", result.Failed).
		Msg("cache warm job completed")

	return result
}

type targetResult struct {
	warmed int
	failed int
	errors []WarmError
}

func (j *WarmJob) warmWorker(ctx context.Context, targets <-chan WarmTarget, results chan<- targetResult) {
	for target := range targets {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.warmTarget(ctx, target)
		}
	}
}

// warmTarget routes one corridor through a throwaway planning pass. Cache
// writes go through the shared directions cache; the overlay output is
// discarded.
func (j *WarmJob) warmTarget(ctx context.Context, target WarmTarget) targetResult {
	var result targetResult

	targetCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	engine := planner.NewReconciler(planner.ReconcilerConfig{
		Provider:   j.provider,
		Overlay:    render.NewNopOverlay(),
		Directions: j.dirCache,
		Engine:     j.engine,
		Logger:     j.logger.With().Str("target", target.Name).Logger(),
	})

	segments, err := engine.Reconcile(targetCtx, passInputFor(target))
	if err != nil {
		n := len(target.Stops) - 1
		if n < 0 {
			n = 0
		}
		result.failed = n
		result.errors = append(result.errors, WarmError{
			Target: target.Name,
			Leg:    -1,
			Error:  err.Error(),
		})
		return result
	}

	for _, seg := range segments {
		if seg.IsFallback {
			result.failed++
			result.errors = append(result.errors, WarmError{
				Target: target.Name,
				Leg:    seg.Index,
				Error:  "leg degraded to fallback",
			})
			continue
		}
		result.warmed++
	}

	// Release the throwaway pass's overlay handles.
	_, _ = engine.Reconcile(targetCtx, planner.PassInput{})

	return result
}

func passInputFor(target WarmTarget) planner.PassInput {
	stops := make([]*planner.Stop, len(target.Stops))
	for i, p := range target.Stops {
		stops[i] = &planner.Stop{Point: geo.Point{Lat: p.Lat, Lon: p.Lon}}
	}
	modes := make([]planner.TravelMode, len(target.Modes))
	for i, m := range target.Modes {
		modes[i] = planner.TravelMode(m)
	}
	return planner.PassInput{Stops: stops, Modes: modes}
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.LegsWarmed += int64(result.Warmed)
	j.metrics.LegsFailed += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmJob) GetMetrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		LegsWarmed:      j.metrics.LegsWarmed,
		LegsFailed:      j.metrics.LegsFailed,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"legs_warmed":       m.LegsWarmed,
		"legs_failed":       m.LegsFailed,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
