package models

import "time"

// Health status values.
const (
	HealthStatusOK       = "OK"
	HealthStatusDegraded = "DEGRADED"
)

// Health is the liveness/readiness response body.
type Health struct {
	Status  string                 `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CacheTierStats reports one cache's counters.
type CacheTierStats struct {
	Name       string `json:"name"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	MemoryHits int64  `json:"memoryHits"`
	DiskHits   int64  `json:"diskHits"`
	MemoryLen  int    `json:"memoryLen"`
}

// CacheStatsResponse is the body of GET /v1/ops/cache/stats.
type CacheStatsResponse struct {
	Time   time.Time        `json:"time"`
	Caches []CacheTierStats `json:"caches"`
}
