package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PlaceStore persists place records indefinitely: provider terms allow
// permanent retention of place identifiers. Formatted address text is
// session-only (memory, never persisted) because the same terms restrict
// long-term storage of human-readable addresses.
type PlaceStore struct {
	store  Store
	logger zerolog.Logger

	mu        sync.RWMutex
	addresses map[string]string
}

// NewPlaceStore creates a place store over the given persistent store. A nil
// store keeps place records for the session only.
func NewPlaceStore(store Store, logger zerolog.Logger) *PlaceStore {
	return &PlaceStore{
		store:     store,
		logger:    logger,
		addresses: make(map[string]string),
	}
}

// SavePlace persists a place record without expiry.
func (s *PlaceStore) SavePlace(ctx context.Context, placeID string, payload []byte) {
	if s.store == nil {
		return
	}
	err := s.store.Put(ctx, &Entry{
		Key:      PlaceKey(placeID),
		Payload:  payload,
		StoredAt: time.Now(),
		// zero ExpiresAt: place IDs never expire
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("place_id", placeID).
			Msg("failed to persist place record")
	}
}

// Place retrieves a persisted place record.
func (s *PlaceStore) Place(ctx context.Context, placeID string) ([]byte, bool) {
	if s.store == nil {
		return nil, false
	}
	entry, err := s.store.Get(ctx, PlaceKey(placeID))
	if err != nil {
		if err != ErrNotFound {
			s.logger.Warn().Err(err).
				Str("place_id", placeID).
				Msg("failed to read place record")
		}
		return nil, false
	}
	return entry.Payload, true
}

// RememberAddress stores a formatted address for this session only.
func (s *PlaceStore) RememberAddress(placeID, formatted string) {
	s.mu.Lock()
	s.addresses[placeID] = formatted
	s.mu.Unlock()
}

// Address returns the session-cached formatted address, if any.
func (s *PlaceStore) Address(placeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr, ok := s.addresses[placeID]
	return addr, ok
}
