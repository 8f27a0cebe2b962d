package planner

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/render"
	"github.com/tripweaver/tripweaver/pkg/polyline"
)

// PassInput is the caller-owned state a reconciliation pass works from. The
// stop list may contain holes (nil entries) from removed stops; modes and
// flags are indexed by leg and default when missing.
type PassInput struct {
	Stops []*Stop
	Modes []TravelMode
	Flags []LegFlags
}

// ReconcilerConfig wires a Reconciler. Provider and Overlay are required;
// Directions is optional (no caching when nil) and Engine falls back to
// DefaultEngine when zero.
type ReconcilerConfig struct {
	Provider   directions.Provider
	Overlay    render.Overlay
	Directions *cache.TwoTier
	Engine     config.Engine
	Logger     zerolog.Logger

	// OnRoutingError receives the flight-leg error event; all other
	// unroutable legs degrade to fallback segments instead of erroring.
	OnRoutingError func(RoutingError)
}

// Reconciler owns the current Route Segment list and every overlay handle
// inside it. Each call to Reconcile is one pass; a pass that is overtaken by
// a newer one abandons its work without touching published state.
type Reconciler struct {
	provider  directions.Provider
	overlay   render.Overlay
	cache     *cache.TwoTier
	engine    config.Engine
	logger    zerolog.Logger
	onError   func(RoutingError)
	validator Validator

	generation atomic.Int64

	mu       sync.Mutex
	segments []*Segment
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Engine == (config.Engine{}) {
		cfg.Engine = config.DefaultEngine()
	}
	return &Reconciler{
		provider: cfg.Provider,
		overlay:  cfg.Overlay,
		cache:    cfg.Directions,
		engine:   cfg.Engine,
		logger:   cfg.Logger,
		onError:  cfg.OnRoutingError,
		validator: Validator{
			ProximityToleranceM: cfg.Engine.ProximityToleranceM,
			TransitWalkCapM:     cfg.Engine.TransitWalkCapM,
		},
	}
}

// Segments returns the current published segment list. The segments remain
// owned by the engine; callers must not retain them across passes.
func (r *Reconciler) Segments() []*Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Segment(nil), r.segments...)
}

// current reports whether gen is still the newest requested pass.
func (r *Reconciler) current(gen int64) bool {
	return r.generation.Load() == gen
}

// Reconcile runs one pass: it classifies every leg as reuse or recompute,
// computes what changed, and atomically publishes the new segment list.
// Passes overtaken at any await point return ErrSuperseded and leave the
// published list to the newer pass. Legs are computed sequentially in index
// order; stop lists are small.
func (r *Reconciler) Reconcile(ctx context.Context, input PassInput) ([]*Segment, error) {
	gen := r.generation.Add(1)

	stops := make([]Stop, 0, len(input.Stops))
	for _, s := range input.Stops {
		if s != nil {
			stops = append(stops, *s)
		}
	}

	prev := r.Segments()

	if len(stops) == 0 || (len(stops) == 1 && !stops[0].Point.Valid()) {
		return r.publish(gen, prev, nil, nil, nil)
	}
	if len(stops) == 1 {
		return r.reconcilePoint(gen, stops[0], legMode(input.Modes, 0), prev)
	}

	specs := buildLegSpecs(stops, input.Modes, input.Flags)

	prevByIndex := make(map[int]*Segment, len(prev))
	for _, s := range prev {
		if s != nil && !s.IsPoint {
			prevByIndex[s.Index] = s
		}
	}

	// A lone point segment's marker carries over as leg 0's start marker so
	// adding a second stop never flickers the first one.
	var adopted render.MarkerHandle
	if len(prev) == 1 && prev[0].IsPoint {
		adopted = prev[0].StartMarker
	}

	next := make([]*Segment, 0, len(specs))
	reused := make(map[*Segment]bool)
	var created []*Segment

	abandon := func() ([]*Segment, error) {
		for _, s := range created {
			if adopted != nil && s.StartMarker == adopted {
				s.StartMarker = nil
			}
			s.release()
		}
		return nil, ErrSuperseded
	}

	for _, spec := range specs {
		if ctx.Err() != nil || !r.current(gen) {
			return abandon()
		}

		if !spec.Origin.Point.Valid() || !spec.Destination.Point.Valid() {
			r.reportUnroutable(spec)
			continue
		}

		if prevSeg, ok := prevByIndex[spec.Index]; ok && canReuse(prevSeg, spec) {
			if spec.Flags.Custom {
				refreshCustomEndpoints(prevSeg, spec)
			}
			reused[prevSeg] = true
			next = append(next, prevSeg)
			continue
		}

		var marker render.MarkerHandle
		if spec.Index == 0 && adopted != nil {
			adopted.MoveTo(spec.Origin.Point)
			adopted.SetGlyph(render.GlyphStart)
			marker = adopted
		}

		seg, err := r.buildSegment(ctx, gen, spec, marker)
		if err != nil {
			return abandon()
		}
		created = append(created, seg)
		next = append(next, seg)
	}

	return r.publish(gen, prev, next, reused, adopted)
}

// publish atomically installs next as the current segment list if the pass
// is still current, releasing every prior segment it did not reuse. Old
// segments beyond the new leg count are released here too.
func (r *Reconciler) publish(gen int64, prev, next []*Segment, reused map[*Segment]bool, adopted render.MarkerHandle) ([]*Segment, error) {
	r.mu.Lock()
	if !r.current(gen) {
		r.mu.Unlock()
		for _, s := range next {
			if s == nil || reused[s] {
				continue
			}
			if adopted != nil && s.StartMarker == adopted {
				s.StartMarker = nil
			}
			s.release()
		}
		return nil, ErrSuperseded
	}
	for _, s := range prev {
		if s == nil || reused[s] {
			continue
		}
		if adopted != nil && s.StartMarker == adopted {
			s.StartMarker = nil
		}
		s.release()
	}
	r.segments = next
	r.mu.Unlock()
	return append([]*Segment(nil), next...), nil
}

// reconcilePoint handles the single-stop itinerary: one marker, no route.
// The prior point segment is kept as-is when nothing about it changed.
func (r *Reconciler) reconcilePoint(gen int64, stop Stop, mode TravelMode, prev []*Segment) ([]*Segment, error) {
	if len(prev) == 1 && prev[0].IsPoint && prev[0].Start == stop.Point && prev[0].Mode == mode {
		return r.publish(gen, prev, prev, map[*Segment]bool{prev[0]: true}, nil)
	}
	seg := &Segment{
		Index:       0,
		Mode:        mode,
		Start:       stop.Point,
		End:         stop.Point,
		StartMarker: r.overlay.Marker(stop.Point, mode.Glyph()),
		IsPoint:     true,
	}
	segs, err := r.publish(gen, prev, []*Segment{seg}, nil, nil)
	if err != nil {
		seg.release()
	}
	return segs, err
}

// buildSegment computes one RECOMPUTE leg. marker, when non-nil, is an
// adopted handle to reuse instead of creating a fresh one. The only error is
// ErrSuperseded.
func (r *Reconciler) buildSegment(ctx context.Context, gen int64, spec LegSpec, marker render.MarkerHandle) (*Segment, error) {
	ownsMarker := marker == nil
	if ownsMarker {
		marker = r.markerFor(spec)
	}

	if spec.Flags.Custom {
		return r.assembleSegment(spec, marker, []geo.Point{spec.Origin.Point, spec.Destination.Point},
			int(geo.Distance(spec.Origin.Point, spec.Destination.Point)), 0, false), nil
	}
	if spec.Mode == ModeFlight {
		return r.buildFlightSegment(spec, marker), nil
	}

	result, err := r.routeLeg(ctx, gen, spec)
	if err != nil {
		if ownsMarker {
			marker.Remove()
		}
		return nil, err
	}

	leg := result.Routes[0].Legs[0]
	path := pathFromResult(result, spec)
	return r.assembleSegment(spec, marker, path, leg.DistanceMeters, leg.DurationSeconds, result.Fallback), nil
}

// routeLeg resolves a non-flight, non-custom leg to a provider result:
// cache first, then a single provider call with no retry (an unroutable
// pair is assumed to keep failing), degrading to a cached fallback when the
// call fails or the validator rejects the answer.
func (r *Reconciler) routeLeg(ctx context.Context, gen int64, spec LegSpec) (*directions.Result, error) {
	plan := resolveEffectiveMode(spec.Mode, geo.Distance(spec.Origin.Point, spec.Destination.Point), r.engine.WalkBikeCarThresholdKm)
	key := cache.DirectionsKey(spec.Origin.Point, spec.Destination.Point, plan.KeyMode)

	if r.cache != nil {
		if payload, ok := r.cache.Get(ctx, key); ok {
			var cached directions.Result
			if err := json.Unmarshal(payload, &cached); err == nil && len(cached.Routes) > 0 {
				if !r.current(gen) {
					return nil, ErrSuperseded
				}
				return &cached, nil
			}
			r.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
		if !r.current(gen) {
			return nil, ErrSuperseded
		}
	}

	result, err := r.provider.Route(ctx, directions.Request{
		Origin:      spec.Origin.Point,
		Destination: spec.Destination.Point,
		Mode:        plan.Mode,
		Transit:     plan.Transit,
	})
	if !r.current(gen) {
		return nil, ErrSuperseded
	}
	switch {
	case err != nil:
		r.logger.Warn().Err(err).Int("leg", spec.Index).Str("mode", string(spec.Mode)).
			Msg("provider call failed, synthesizing fallback")
		result = synthesizeFallback(spec.Origin.Point, spec.Destination.Point)
	default:
		if verr := r.validator.Validate(result, spec); verr != nil {
			r.logger.Warn().Err(verr).Int("leg", spec.Index).Str("mode", string(spec.Mode)).
				Msg("provider route rejected, synthesizing fallback")
			result = synthesizeFallback(spec.Origin.Point, spec.Destination.Point)
		}
	}

	if r.cache != nil {
		if payload, merr := json.Marshal(result); merr == nil {
			r.cache.Put(ctx, key, payload)
		}
		if !r.current(gen) {
			return nil, ErrSuperseded
		}
	}
	return result, nil
}

// buildFlightSegment synthesizes a flight leg locally: a parabolic arc path
// with analytic distance and duration. Flights are never cached and never
// validated.
func (r *Reconciler) buildFlightSegment(spec LegSpec, marker render.MarkerHandle) *Segment {
	distance := geo.Distance(spec.Origin.Point, spec.Destination.Point)
	duration := 0
	if r.engine.FlightCruiseSpeedKmh > 0 {
		duration = int(distance * 3.6 / r.engine.FlightCruiseSpeedKmh)
	}
	path := geo.FlightArc(spec.Origin.Point, spec.Destination.Point, geo.DefaultArcPoints)
	return r.assembleSegment(spec, marker, path, int(distance), duration, false)
}

func (r *Reconciler) assembleSegment(spec LegSpec, marker render.MarkerHandle, path []geo.Point, distanceM, durationS int, fallback bool) *Segment {
	return &Segment{
		Index:           spec.Index,
		Mode:            spec.Mode,
		Start:           spec.Origin.Point,
		End:             spec.Destination.Point,
		StartMarker:     marker,
		RouteLine:       r.overlay.Polyline(path, lineStyle(spec.Mode, fallback)),
		Path:            path,
		DistanceMeters:  distanceM,
		DurationSeconds: durationS,
		IsFallback:      fallback,
		IsCustom:        spec.Flags.Custom,
		IsLocked:        spec.Flags.Locked,
	}
}

// markerFor creates the leg's start marker. The first leg always gets the
// start glyph; every other leg shows its own mode, never the previous
// leg's. No end markers exist.
func (r *Reconciler) markerFor(spec LegSpec) render.MarkerHandle {
	glyph := spec.Mode.Glyph()
	if spec.Index == 0 {
		glyph = render.GlyphStart
	}
	return r.overlay.Marker(spec.Origin.Point, glyph)
}

// reportUnroutable handles a leg with missing or out-of-range coordinates.
// Flight legs surface a user-facing event telling the caller to clear the
// stop; everything else is skipped quietly.
func (r *Reconciler) reportUnroutable(spec LegSpec) {
	if spec.Mode != ModeFlight {
		r.logger.Debug().Int("leg", spec.Index).Msg("skipping leg with invalid endpoints")
		return
	}
	ev := RoutingError{
		LegIndex:         spec.Index,
		OriginLabel:      spec.Origin.Label(),
		DestinationLabel: spec.Destination.Label(),
		ClearStop:        true,
	}
	r.logger.Warn().Int("leg", spec.Index).Str("origin", ev.OriginLabel).
		Str("destination", ev.DestinationLabel).Msg("flight leg unroutable")
	if r.onError != nil {
		r.onError(ev)
	}
}

// canReuse implements leg classification: a previous segment survives when
// its mode, flags, and start match, and for non-custom legs its end matches
// too. Custom legs keep their drawn path across destination drags.
func canReuse(prev *Segment, spec LegSpec) bool {
	if prev.Mode != spec.Mode {
		return false
	}
	if prev.IsCustom != spec.Flags.Custom || prev.IsLocked != spec.Flags.Locked {
		return false
	}
	if prev.Start != spec.Origin.Point {
		return false
	}
	if !spec.Flags.Custom && prev.End != spec.Destination.Point {
		return false
	}
	return true
}

// refreshCustomEndpoints pins a reused custom leg's display path to its new
// endpoints; the interior points belong to the drawing collaborator.
func refreshCustomEndpoints(seg *Segment, spec LegSpec) {
	seg.End = spec.Destination.Point
	if n := len(seg.Path); n >= 2 {
		seg.Path[0] = spec.Origin.Point
		seg.Path[n-1] = spec.Destination.Point
		if seg.RouteLine != nil {
			seg.RouteLine.SetPath(seg.Path)
		}
	}
}

// buildLegSpecs pairs consecutive stops into legs, defaulting missing modes
// to walking.
func buildLegSpecs(stops []Stop, modes []TravelMode, flags []LegFlags) []LegSpec {
	specs := make([]LegSpec, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		spec := LegSpec{
			Index:       i,
			Origin:      stops[i],
			Destination: stops[i+1],
			Mode:        legMode(modes, i),
		}
		if i < len(flags) {
			spec.Flags = flags[i]
		}
		specs = append(specs, spec)
	}
	return specs
}

func legMode(modes []TravelMode, i int) TravelMode {
	if i < len(modes) && modes[i].Valid() {
		return modes[i]
	}
	return DefaultMode
}

// pathFromResult decodes the overview polyline into the drawn path, falling
// back to a straight endpoint join when the encoding is empty or broken.
func pathFromResult(result *directions.Result, spec LegSpec) []geo.Point {
	decoded := polyline.Decode(result.Routes[0].OverviewPolyline)
	if len(decoded) < 2 {
		return []geo.Point{spec.Origin.Point, spec.Destination.Point}
	}
	path := make([]geo.Point, len(decoded))
	for i, p := range decoded {
		path[i] = geo.Point{Lat: p.Lat, Lon: p.Lon}
	}
	return path
}
