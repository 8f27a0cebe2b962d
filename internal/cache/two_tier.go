package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TwoTierConfig holds configuration for a two-tier cache.
type TwoTierConfig struct {
	// Name identifies the cache in logs ("directions", "geocode").
	Name string

	// Store is the persistent tier. Optional: when nil the cache runs
	// memory-only.
	Store Store

	// Logger for cache operations.
	Logger zerolog.Logger

	// TTL is how long entries stay valid (default: 30 days).
	TTL time.Duration

	// MemorySize is the in-process tier cap (default: 200 entries).
	MemorySize int
}

// TwoTier is a two-tier cache: a bounded in-process map in front of a
// persistent store. Reads check memory first, then the store, promoting
// unexpired hits into memory; writes go through to both tiers. Persistent
// I/O failures are logged and degrade that call to memory-only behavior.
type TwoTier struct {
	name   string
	store  Store
	logger zerolog.Logger
	ttl    time.Duration
	memory *memoryTier

	mu    sync.Mutex
	stats Stats
}

// Name returns the cache's configured name.
func (c *TwoTier) Name() string {
	return c.name
}

// Stats holds cache hit/miss counters. Observability only.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	MemoryHits int64 `json:"memoryHits"`
	DiskHits   int64 `json:"diskHits"`
}

// NewTwoTier creates a two-tier cache.
func NewTwoTier(cfg TwoTierConfig) *TwoTier {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &TwoTier{
		name:   cfg.Name,
		store:  cfg.Store,
		logger: cfg.Logger,
		ttl:    ttl,
		memory: newMemoryTier(cfg.MemorySize),
	}
}

// Get returns the cached payload for key, or false on a miss. An expired
// persistent entry is deleted and treated as a miss.
func (c *TwoTier) Get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()

	if payload, ok := c.memory.get(key, now); ok {
		c.count(func(s *Stats) { s.Hits++; s.MemoryHits++ })
		return payload, true
	}

	if c.store == nil {
		c.count(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if err != ErrNotFound {
			c.logger.Warn().Err(err).
				Str("cache", c.name).
				Str("key", key).
				Msg("persistent cache read failed")
		}
		c.count(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	if entry.Expired(now) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).
				Str("cache", c.name).
				Str("key", key).
				Msg("failed to delete expired cache entry")
		}
		c.count(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	// Promote into memory
	c.memory.put(key, entry.Payload, entry.ExpiresAt)
	c.count(func(s *Stats) { s.Hits++; s.DiskHits++ })
	return entry.Payload, true
}

// Put writes the payload through to both tiers with the configured TTL.
func (c *TwoTier) Put(ctx context.Context, key string, payload []byte) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	c.memory.put(key, payload, expiresAt)

	if c.store == nil {
		return
	}
	err := c.store.Put(ctx, &Entry{
		Key:       key,
		Payload:   payload,
		StoredAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		c.logger.Warn().Err(err).
			Str("cache", c.name).
			Str("key", key).
			Msg("persistent cache write failed")
	}
}

// Stats returns a snapshot of the cache counters.
func (c *TwoTier) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// MemoryLen returns the number of entries in the memory tier.
func (c *TwoTier) MemoryLen() int {
	return c.memory.len()
}

func (c *TwoTier) count(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}
