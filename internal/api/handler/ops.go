// Package handler provides HTTP handlers for the TripWeaver API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tripweaver/tripweaver/internal/api/models"
	"github.com/tripweaver/tripweaver/internal/api/response"
	"github.com/tripweaver/tripweaver/internal/cache"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	ready     func(ctx context.Context) error
	caches    []*cache.TwoTier
}

// NewOpsHandler creates a new OpsHandler. ready, when non-nil, is consulted
// by the readiness check (typically a database ping); caches are reported by
// the stats endpoint.
func NewOpsHandler(version, buildTime string, ready func(ctx context.Context) error, caches ...*cache.TwoTier) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		ready:     ready,
		caches:    caches,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			response.ServiceUnavailable(w, r, "dependency not ready")
			return
		}
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	})
}

// CacheStats handles GET /v1/ops/cache/stats - cache counters.
func (h *OpsHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	resp := models.CacheStatsResponse{
		Time:   time.Now().UTC(),
		Caches: make([]models.CacheTierStats, 0, len(h.caches)),
	}
	for _, c := range h.caches {
		stats := c.Stats()
		resp.Caches = append(resp.Caches, models.CacheTierStats{
			Name:       c.Name(),
			Hits:       stats.Hits,
			Misses:     stats.Misses,
			MemoryHits: stats.MemoryHits,
			DiskHits:   stats.DiskHits,
			MemoryLen:  c.MemoryLen(),
		})
	}
	response.JSON(w, r, http.StatusOK, resp)
}
