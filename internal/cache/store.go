// Package cache provides the two-tier (memory + persistent) caches for
// directions, geocoding, and place lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/geo"
)

// ErrNotFound indicates the key is absent from the store.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a persisted cache record. A zero ExpiresAt means the entry never
// expires (place records).
type Entry struct {
	Key       string
	Payload   []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Store is the persistent key-value tier.
type Store interface {
	// Get retrieves an entry, or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put inserts or replaces an entry.
	Put(ctx context.Context, entry *Entry) error
	// Delete removes the given keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// ExpiredBefore returns up to limit keys whose expiry precedes cutoff.
	ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// SweepExpired deletes entries whose expiry has passed. Run at startup and
// periodically by the maintenance worker.
func SweepExpired(ctx context.Context, store Store, logger zerolog.Logger) (int, error) {
	const batchSize = 500

	total := 0
	for {
		keys, err := store.ExpiredBefore(ctx, time.Now(), batchSize)
		if err != nil {
			return total, fmt.Errorf("querying expired entries: %w", err)
		}
		if len(keys) == 0 {
			break
		}
		if err := store.Delete(ctx, keys...); err != nil {
			return total, fmt.Errorf("deleting expired entries: %w", err)
		}
		total += len(keys)
		if len(keys) < batchSize {
			break
		}
	}

	if total > 0 {
		logger.Info().
			Int("deleted", total).
			Msg("swept expired cache entries")
	}
	return total, nil
}

// DirectionsKey derives the cache key for a directions lookup. Coordinates
// are rounded to 1e-5 degrees (~1m) and the mode is the effective mode sent
// to the provider, not the display mode. The lookup before a provider call
// and the write after it must both go through this function.
func DirectionsKey(origin, destination geo.Point, effectiveMode string) string {
	return fmt.Sprintf("dir:%.5f,%.5f|%.5f,%.5f|%s",
		origin.Lat, origin.Lon,
		destination.Lat, destination.Lon,
		effectiveMode,
	)
}

// GeocodeKey derives the cache key for a geocoding query.
func GeocodeKey(query string) string {
	return "geo:" + strings.ToLower(strings.TrimSpace(query))
}

// PlaceKey derives the store key for a place record.
func PlaceKey(placeID string) string {
	return "place:" + placeID
}
