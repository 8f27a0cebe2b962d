// Package geocode resolves free-form place queries through the directions
// provider, cached in the two-tier geocode cache and the place store.
package geocode

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
)

// cachedPlace is the persisted shape of a geocode result. The formatted
// address is deliberately absent: provider terms limit it to session
// memory, so it lives in the place store's address map only.
type cachedPlace struct {
	Location geo.Point `json:"location"`
	PlaceID  string    `json:"placeId,omitempty"`
}

// ServiceConfig wires a geocode Service.
type ServiceConfig struct {
	Provider directions.Provider
	Cache    *cache.TwoTier
	Places   *cache.PlaceStore
	Logger   zerolog.Logger
}

// Service caches geocode lookups. Queries are case-folded before keying, so
// "Berlin" and "berlin" share an entry.
type Service struct {
	provider directions.Provider
	cache    *cache.TwoTier
	places   *cache.PlaceStore
	logger   zerolog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		places:   cfg.Places,
		logger:   cfg.Logger,
	}
}

// Resolve returns the location for a free-form query, from cache when
// possible. The formatted address is filled in only when this session has
// seen it before or the provider was consulted.
func (s *Service) Resolve(ctx context.Context, query string) (*directions.GeocodeResult, error) {
	key := cache.GeocodeKey(query)

	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var place cachedPlace
			if err := json.Unmarshal(payload, &place); err == nil {
				result := &directions.GeocodeResult{
					Location: place.Location,
					PlaceID:  place.PlaceID,
				}
				if s.places != nil {
					if addr, ok := s.places.Address(place.PlaceID); ok {
						result.FormattedAddress = addr
					}
				}
				return result, nil
			}
			s.logger.Warn().Str("key", key).Msg("discarding undecodable geocode entry")
		}
	}

	result, err := s.provider.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		payload, merr := json.Marshal(cachedPlace{Location: result.Location, PlaceID: result.PlaceID})
		if merr == nil {
			s.cache.Put(ctx, key, payload)
		}
	}
	if s.places != nil && result.PlaceID != "" {
		s.places.SavePlace(ctx, result.PlaceID, []byte(`{"source":"geocode"}`))
		if result.FormattedAddress != "" {
			s.places.RememberAddress(result.PlaceID, result.FormattedAddress)
		}
	}
	return result, nil
}
