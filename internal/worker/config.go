// Package worker provides background cache maintenance for TripWeaver.
package worker

import (
	"time"
)

// WarmTarget is one corridor to pre-route: an ordered list of stops plus
// the travel mode of each leg between them.
type WarmTarget struct {
	// Name is the human-readable name of the corridor.
	Name string

	// Stops are the corridor's waypoints in travel order.
	Stops []Point

	// Modes are the per-leg travel modes ("walk", "car", "train", ...).
	// One fewer entry than Stops; missing entries default to walk.
	Modes []string

	// Priority determines warm order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// WarmConfig holds configuration for the cache warm job.
type WarmConfig struct {
	// Targets are the corridors to pre-route.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Concurrency is the number of corridors warmed in parallel.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for warming one corridor.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warm configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultWarmTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultWarmTargets returns the default corridors: the intercity pairs
// that dominate planning traffic, plus a few walkable city cores.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{
			Name:     "Randstad rail",
			Priority: 1,
			Stops: []Point{
				{Lat: 52.3791, Lon: 4.9003}, // Amsterdam Centraal
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht Centraal
				{Lat: 51.9244, Lon: 4.4777}, // Rotterdam Centraal
				{Lat: 52.0705, Lon: 4.3007}, // Den Haag Centraal
			},
			Modes: []string{"train", "train", "train"},
		},
		{
			Name:     "Amsterdam-Paris rail",
			Priority: 1,
			Stops: []Point{
				{Lat: 52.3791, Lon: 4.9003}, // Amsterdam Centraal
				{Lat: 50.8357, Lon: 4.3367}, // Brussel-Zuid
				{Lat: 48.8809, Lon: 2.3553}, // Paris Gare du Nord
			},
			Modes: []string{"train", "train"},
		},
		{
			Name:     "Amsterdam-Berlin rail",
			Priority: 2,
			Stops: []Point{
				{Lat: 52.3791, Lon: 4.9003},  // Amsterdam Centraal
				{Lat: 52.5250, Lon: 13.3694}, // Berlin Hbf
			},
			Modes: []string{"train"},
		},
		{
			Name:     "A2 corridor",
			Priority: 2,
			Stops: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Amsterdam
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht
				{Lat: 51.4416, Lon: 5.4697}, // Eindhoven
			},
			Modes: []string{"car", "car"},
		},
		{
			Name:     "Amsterdam core walk",
			Priority: 3,
			Stops: []Point{
				{Lat: 52.3791, Lon: 4.9003}, // Amsterdam Centraal
				{Lat: 52.3731, Lon: 4.8926}, // Dam Square
				{Lat: 52.3600, Lon: 4.8852}, // Museumplein
			},
			Modes: []string{"walk", "walk"},
		},
		{
			Name:     "Paris core walk",
			Priority: 3,
			Stops: []Point{
				{Lat: 48.8606, Lon: 2.3376}, // Louvre
				{Lat: 48.8530, Lon: 2.3499}, // Notre-Dame
				{Lat: 48.8584, Lon: 2.2945}, // Eiffel Tower
			},
			Modes: []string{"walk", "walk"},
		},
	}
}

// TotalLegs returns the total number of legs across all targets.
func (c WarmConfig) TotalLegs() int {
	total := 0
	for _, target := range c.Targets {
		if n := len(target.Stops); n > 1 {
			total += n - 1
		}
	}
	return total
}
