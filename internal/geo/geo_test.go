package geo

import (
	"math"
	"testing"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Point
		wantM   float64
		within  float64
	}{
		{
			name:   "same point",
			a:      Point{Lat: 52.37, Lon: 4.89},
			b:      Point{Lat: 52.37, Lon: 4.89},
			wantM:  0,
			within: 0.001,
		},
		{
			name:   "amsterdam to utrecht",
			a:      Point{Lat: 52.3676, Lon: 4.9041},
			b:      Point{Lat: 52.0907, Lon: 5.1214},
			wantM:  34000,
			within: 1500,
		},
		{
			name:   "ten degrees of longitude at equator",
			a:      Point{Lat: 0, Lon: 0},
			b:      Point{Lat: 0, Lon: 10},
			wantM:  1111950,
			within: 2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.within {
				t.Errorf("Distance() = %.0fm, want %.0fm ± %.0fm", got, tt.wantM, tt.within)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 48.8566, Lon: 2.3522}
	b := Point{Lat: 51.5074, Lon: -0.1278}

	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestFlightArc_EndpointsExact(t *testing.T) {
	origin := Point{Lat: 40.6413, Lon: -73.7781}
	dest := Point{Lat: 51.47, Lon: -0.4543}

	arc := FlightArc(origin, dest, 100)

	if len(arc) != 100 {
		t.Fatalf("expected 100 points, got %d", len(arc))
	}
	if arc[0] != origin {
		t.Errorf("first point %+v does not equal origin %+v", arc[0], origin)
	}
	if arc[len(arc)-1] != dest {
		t.Errorf("last point %+v does not equal destination %+v", arc[len(arc)-1], dest)
	}
}

func TestFlightArc_MidpointBulge(t *testing.T) {
	// 10 degrees of longitude at the equator is roughly 1112km, so the
	// midpoint offset should be about 1112km * 0.02 / 111km ~= 0.2 degrees.
	origin := Point{Lat: 0, Lon: 0}
	dest := Point{Lat: 0, Lon: 10}

	arc := FlightArc(origin, dest, 101) // odd count puts a point at t=0.5
	mid := arc[50]

	if math.Abs(mid.Lon-5) > 0.001 {
		t.Errorf("midpoint longitude = %f, want 5", mid.Lon)
	}
	if math.Abs(mid.Lat-0.2) > 0.01 {
		t.Errorf("midpoint latitude offset = %f, want ~0.2", mid.Lat)
	}
}

func TestFlightArc_DefaultsPointCount(t *testing.T) {
	arc := FlightArc(Point{}, Point{Lat: 1, Lon: 1}, 0)
	if len(arc) != DefaultArcPoints {
		t.Errorf("expected %d points for n=0, got %d", DefaultArcPoints, len(arc))
	}
}

func TestInterpolate_Clamps(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 10, Lon: 10}

	if got := Interpolate(a, b, -0.5); got != a {
		t.Errorf("t<0 should clamp to origin, got %+v", got)
	}
	if got := Interpolate(a, b, 1.5); got != b {
		t.Errorf("t>1 should clamp to destination, got %+v", got)
	}
	if got := Interpolate(a, b, 0.5); got.Lat != 5 || got.Lon != 5 {
		t.Errorf("t=0.5 should be midpoint, got %+v", got)
	}
}

func TestPathLength(t *testing.T) {
	path := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 0, Lon: 2},
	}

	direct := Distance(path[0], path[2])
	total := PathLength(path)

	if math.Abs(total-direct) > 1 {
		t.Errorf("collinear path length %f should equal direct distance %f", total, direct)
	}
	if PathLength(path[:1]) != 0 {
		t.Error("single-point path should have zero length")
	}
}

func TestPointValid(t *testing.T) {
	valid := []Point{{Lat: 0, Lon: 0}, {Lat: -90, Lon: 180}, {Lat: 90, Lon: -180}}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("expected %+v to be valid", p)
		}
	}

	invalid := []Point{{Lat: 91, Lon: 0}, {Lat: 0, Lon: -181}, {Lat: -100, Lon: 200}}
	for _, p := range invalid {
		if p.Valid() {
			t.Errorf("expected %+v to be invalid", p)
		}
	}
}
