package planner

import (
	"time"

	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/pkg/polyline"
)

// synthesizeFallback builds the degraded result used when the provider fails
// or its answer is rejected: a single zero-duration leg drawn as a straight
// line between the endpoints. Fallback results are cached under the same key
// a real result would have used, so a broken corridor is not re-queried on
// every pass until the entry expires.
func synthesizeFallback(origin, destination geo.Point) *directions.Result {
	path := []polyline.Point{
		{Lat: origin.Lat, Lon: origin.Lon},
		{Lat: destination.Lat, Lon: destination.Lon},
	}
	return &directions.Result{
		Routes: []directions.Route{{
			Legs: []directions.Leg{{
				DistanceMeters:  0,
				DurationSeconds: 0,
				StartLocation:   origin,
				EndLocation:     destination,
			}},
			OverviewPolyline: polyline.Encode(path),
		}},
		Provider:  "fallback",
		FetchedAt: time.Now().UTC(),
		Fallback:  true,
		Warnings:  []string{"No route available; showing a direct line instead."},
	}
}
