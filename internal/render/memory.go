package render

import (
	"sync"

	"github.com/tripweaver/tripweaver/internal/geo"
)

// MemoryOverlay is an in-process Overlay that records draw and teardown
// calls. It backs tests and headless deployments (the HTTP API renders
// nothing but still drives the full handle lifecycle).
type MemoryOverlay struct {
	mu     sync.Mutex
	nextID int
	lines  map[int]*MemoryPolyline
	marks  map[int]*MemoryMarker
}

// NewMemoryOverlay creates an empty recording overlay.
func NewMemoryOverlay() *MemoryOverlay {
	return &MemoryOverlay{
		lines: make(map[int]*MemoryPolyline),
		marks: make(map[int]*MemoryMarker),
	}
}

// Polyline records a drawn path.
func (o *MemoryOverlay) Polyline(points []geo.Point, style PolylineStyle) PolylineHandle {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	line := &MemoryPolyline{overlay: o, id: o.nextID, Path: points, Style: style}
	o.lines[line.id] = line
	return line
}

// Marker records a drawn marker.
func (o *MemoryOverlay) Marker(at geo.Point, glyph MarkerGlyph) MarkerHandle {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	marker := &MemoryMarker{overlay: o, id: o.nextID, At: at, Glyph: glyph}
	o.marks[marker.id] = marker
	return marker
}

// LivePolylines returns the number of polylines not yet removed.
func (o *MemoryOverlay) LivePolylines() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.lines)
}

// LiveMarkers returns the number of markers not yet removed.
func (o *MemoryOverlay) LiveMarkers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.marks)
}

// MemoryPolyline is a recorded polyline.
type MemoryPolyline struct {
	overlay *MemoryOverlay
	id      int
	Path    []geo.Point
	Style   PolylineStyle
	Removed bool
}

// SetPath replaces the recorded path.
func (p *MemoryPolyline) SetPath(points []geo.Point) {
	p.overlay.mu.Lock()
	p.Path = points
	p.overlay.mu.Unlock()
}

// Remove tears the polyline down.
func (p *MemoryPolyline) Remove() {
	p.overlay.mu.Lock()
	p.Removed = true
	delete(p.overlay.lines, p.id)
	p.overlay.mu.Unlock()
}

// MemoryMarker is a recorded marker.
type MemoryMarker struct {
	overlay *MemoryOverlay
	id      int
	At      geo.Point
	Glyph   MarkerGlyph
	Removed bool
}

// MoveTo repositions the recorded marker.
func (m *MemoryMarker) MoveTo(at geo.Point) {
	m.overlay.mu.Lock()
	m.At = at
	m.overlay.mu.Unlock()
}

// SetGlyph changes the recorded marker symbol.
func (m *MemoryMarker) SetGlyph(glyph MarkerGlyph) {
	m.overlay.mu.Lock()
	m.Glyph = glyph
	m.overlay.mu.Unlock()
}

// Remove tears the marker down.
func (m *MemoryMarker) Remove() {
	m.overlay.mu.Lock()
	m.Removed = true
	delete(m.overlay.marks, m.id)
	m.overlay.mu.Unlock()
}

// Ensure the recording types satisfy the overlay interfaces.
var (
	_ Overlay        = (*MemoryOverlay)(nil)
	_ PolylineHandle = (*MemoryPolyline)(nil)
	_ MarkerHandle   = (*MemoryMarker)(nil)
)
