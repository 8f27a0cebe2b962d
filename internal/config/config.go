// Package config holds the planning engine's tunable thresholds.
package config

import (
	"os"
	"strconv"
	"time"
)

// Engine holds the reconciliation and cache thresholds. These were fixed
// constants in the original design; they are env-configurable here with the
// same defaults.
type Engine struct {
	// WalkBikeCarThresholdKm is the distance above which walk and bike legs
	// are silently routed as car while keeping their display mode.
	WalkBikeCarThresholdKm float64

	// ProximityToleranceM is how far a provider may snap the route start or
	// end from the requested point before the result is rejected.
	ProximityToleranceM float64

	// TransitWalkCapM is the longest walking connector allowed inside a
	// transit route.
	TransitWalkCapM float64

	// CacheTTL is how long directions and geocode cache entries stay valid.
	CacheTTL time.Duration

	// GeocodeMemoryCacheSize caps the geocode cache's memory tier.
	GeocodeMemoryCacheSize int

	// DirectionsMemoryCacheSize caps the directions cache's memory tier.
	DirectionsMemoryCacheSize int

	// FlightCruiseSpeedKmh is the cruise speed assumed for flight duration.
	FlightCruiseSpeedKmh float64
}

// DefaultEngine returns the engine defaults.
func DefaultEngine() Engine {
	return Engine{
		WalkBikeCarThresholdKm:    30,
		ProximityToleranceM:       300,
		TransitWalkCapM:           1000,
		CacheTTL:                  30 * 24 * time.Hour,
		GeocodeMemoryCacheSize:    200,
		DirectionsMemoryCacheSize: 100,
		FlightCruiseSpeedKmh:      800,
	}
}

// EngineFromEnv creates an Engine from environment variables, falling back
// to the defaults.
func EngineFromEnv() Engine {
	cfg := DefaultEngine()

	cfg.WalkBikeCarThresholdKm = envFloat("ENGINE_WALK_BIKE_CAR_THRESHOLD_KM", cfg.WalkBikeCarThresholdKm)
	cfg.ProximityToleranceM = envFloat("ENGINE_PROXIMITY_TOLERANCE_M", cfg.ProximityToleranceM)
	cfg.TransitWalkCapM = envFloat("ENGINE_TRANSIT_WALK_CAP_M", cfg.TransitWalkCapM)
	cfg.GeocodeMemoryCacheSize = envInt("ENGINE_GEOCODE_MEMORY_CACHE_SIZE", cfg.GeocodeMemoryCacheSize)
	cfg.DirectionsMemoryCacheSize = envInt("ENGINE_DIRECTIONS_MEMORY_CACHE_SIZE", cfg.DirectionsMemoryCacheSize)
	cfg.FlightCruiseSpeedKmh = envFloat("ENGINE_FLIGHT_CRUISE_SPEED_KMH", cfg.FlightCruiseSpeedKmh)

	if days := envInt("ENGINE_CACHE_TTL_DAYS", 0); days > 0 {
		cfg.CacheTTL = time.Duration(days) * 24 * time.Hour
	}

	return cfg
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
