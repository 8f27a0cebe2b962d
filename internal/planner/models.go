// Package planner implements the route segment reconciliation engine: given
// an ordered list of stops and per-leg travel modes, it decides on every
// edit which legs keep their previously computed route and markers, which
// are recomputed against the directions provider, validates results, falls
// back to synthetic straight-line routes, and caches computations.
package planner

import (
	"errors"
	"fmt"

	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/render"
)

// ErrSuperseded is returned by a reconciliation pass that was overtaken by a
// newer pass. The overtaken pass publishes nothing and releases anything it
// acquired; callers normally ignore it.
var ErrSuperseded = errors.New("reconciliation pass superseded")

// TravelMode is the mode shown to the user for a leg. The mode actually sent
// to the provider (the effective mode) may differ; see effectivePlan.
type TravelMode string

const (
	ModeWalk    TravelMode = "walk"
	ModeBike    TravelMode = "bike"
	ModeCar     TravelMode = "car"
	ModeBus     TravelMode = "bus"
	ModeTransit TravelMode = "transit"
	ModeTrain   TravelMode = "train"
	ModeFerry   TravelMode = "ferry"
	ModeFlight  TravelMode = "flight"
)

// DefaultMode fills holes in the per-leg mode list.
const DefaultMode = ModeWalk

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeWalk, ModeBike, ModeCar, ModeBus, ModeTransit, ModeTrain, ModeFerry, ModeFlight:
		return true
	}
	return false
}

// Glyph returns the marker symbol for the mode.
func (m TravelMode) Glyph() render.MarkerGlyph {
	switch m {
	case ModeBike:
		return render.GlyphBike
	case ModeCar:
		return render.GlyphCar
	case ModeBus:
		return render.GlyphBus
	case ModeTransit, ModeTrain:
		return render.GlyphTrain
	case ModeFerry:
		return render.GlyphFerry
	case ModeFlight:
		return render.GlyphFlight
	default:
		return render.GlyphWalk
	}
}

// Stop is a point in the itinerary. Stops are identity-free: the engine
// compares them by coordinates only.
type Stop struct {
	Point geo.Point
	Name  string
}

// Label returns display text for the stop for user-facing messages.
func (s *Stop) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%.5f, %.5f", s.Point.Lat, s.Point.Lon)
}

// LegFlags carry the per-leg edit state owned by the caller.
type LegFlags struct {
	// Custom marks a leg whose visual path is owned by the drawing
	// collaborator; the engine keeps its endpoints fresh but never routes it.
	Custom bool
	// Locked pins a leg against mode changes in the UI. The engine treats a
	// flag change as a forced recompute.
	Locked bool
}

// LegSpec is the derived description of one leg for a reconciliation pass.
type LegSpec struct {
	Index       int
	Origin      Stop
	Destination Stop
	Mode        TravelMode
	Flags       LegFlags
}

// Segment is the engine's output for one leg. Segments parallel the leg
// specs by index and are never reordered internally; reordering only comes
// from a changed stop order in the next pass. The engine exclusively owns
// every segment and the overlay handles inside it.
type Segment struct {
	Index int
	Mode  TravelMode
	Start geo.Point
	End   geo.Point

	// StartMarker sits at the leg's origin and shows this leg's mode. No
	// end markers exist; a leg's end is marked by the next leg's start.
	StartMarker render.MarkerHandle

	// RouteLine is the drawn path handle; Path is the points behind it.
	RouteLine render.PolylineHandle
	Path      []geo.Point

	DistanceMeters  int
	DurationSeconds int

	IsFallback bool
	IsCustom   bool
	IsLocked   bool

	// IsPoint marks the marker-only segment of a single-stop itinerary.
	IsPoint bool
}

// release tears down every overlay handle the segment owns. Must be called
// on every path that drops the segment.
func (s *Segment) release() {
	if s == nil {
		return
	}
	if s.StartMarker != nil {
		s.StartMarker.Remove()
		s.StartMarker = nil
	}
	if s.RouteLine != nil {
		s.RouteLine.Remove()
		s.RouteLine = nil
	}
}

// RoutingError is the single user-facing error event the engine emits: a
// flight leg with endpoints that cannot be routed. Every other unroutable
// leg degrades to a fallback segment instead.
type RoutingError struct {
	LegIndex         int
	OriginLabel      string
	DestinationLabel string
	// ClearStop tells the caller the offending stop should be removed.
	ClearStop bool
}

func (e RoutingError) Error() string {
	return fmt.Sprintf("no flight route from %q to %q", e.OriginLabel, e.DestinationLabel)
}
