// Package render defines the boundary to the map rendering surface. The
// planner owns every handle it acquires here and must call Remove on each
// before dropping the segment that holds it; the real drawing surface is an
// external collaborator behind these interfaces.
package render

import (
	"github.com/tripweaver/tripweaver/internal/geo"
)

// MarkerGlyph is the symbol drawn on a stop marker.
type MarkerGlyph string

const (
	GlyphStart  MarkerGlyph = "start"
	GlyphWalk   MarkerGlyph = "walk"
	GlyphBike   MarkerGlyph = "bike"
	GlyphCar    MarkerGlyph = "car"
	GlyphBus    MarkerGlyph = "bus"
	GlyphTrain  MarkerGlyph = "train"
	GlyphFerry  MarkerGlyph = "ferry"
	GlyphFlight MarkerGlyph = "flight"
)

// PolylineStyle selects how a segment path is drawn. The display mode drives
// the color even when the routed (effective) mode differs.
type PolylineStyle struct {
	Mode   string
	Dashed bool // fallback straight-lines render dashed
}

// PolylineHandle is a drawn path owned by the planner.
type PolylineHandle interface {
	// SetPath replaces the drawn path.
	SetPath(points []geo.Point)
	// Remove tears the polyline down. Must be called exactly once.
	Remove()
}

// MarkerHandle is a drawn stop marker owned by the planner.
type MarkerHandle interface {
	// MoveTo repositions the marker.
	MoveTo(at geo.Point)
	// SetGlyph changes the marker symbol.
	SetGlyph(glyph MarkerGlyph)
	// Remove tears the marker down. Must be called exactly once.
	Remove()
}

// Overlay is the drawing surface the planner renders onto.
type Overlay interface {
	// Polyline draws a path and returns its handle.
	Polyline(points []geo.Point, style PolylineStyle) PolylineHandle
	// Marker draws a stop marker and returns its handle.
	Marker(at geo.Point, glyph MarkerGlyph) MarkerHandle
}

// NopOverlay discards everything drawn on it. Useful for background jobs
// that run planner passes purely for their caching side effects.
type NopOverlay struct{}

func NewNopOverlay() NopOverlay { return NopOverlay{} }

func (NopOverlay) Polyline([]geo.Point, PolylineStyle) PolylineHandle { return nopHandle{} }

func (NopOverlay) Marker(geo.Point, MarkerGlyph) MarkerHandle { return nopHandle{} }

type nopHandle struct{}

func (nopHandle) SetPath([]geo.Point) {}

func (nopHandle) MoveTo(geo.Point) {}

func (nopHandle) SetGlyph(MarkerGlyph) {}

func (nopHandle) Remove() {}
