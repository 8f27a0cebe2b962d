package polyline

import (
	"math"
	"testing"
)

func TestDecode_GoogleReferenceExample(t *testing.T) {
	// Reference example from the polyline algorithm documentation.
	points := Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	want := []Point{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}

	for i, p := range points {
		if math.Abs(p.Lat-want[i].Lat) > 1e-5 || math.Abs(p.Lon-want[i].Lon) > 1e-5 {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	if points := Decode(""); points != nil {
		t.Errorf("expected nil for empty input, got %v", points)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	original := []Point{
		{Lat: 52.37403, Lon: 4.88969},
		{Lat: 52.09083, Lon: 5.12222},
		{Lat: 51.92250, Lon: 4.47917},
	}

	decoded := Decode(Encode(original))

	if len(decoded) != len(original) {
		t.Fatalf("expected %d points after round trip, got %d", len(original), len(decoded))
	}
	for i := range original {
		if math.Abs(decoded[i].Lat-original[i].Lat) > 1e-5 ||
			math.Abs(decoded[i].Lon-original[i].Lon) > 1e-5 {
			t.Errorf("point %d = %+v, want %+v", i, decoded[i], original[i])
		}
	}
}

func TestEncode_Empty(t *testing.T) {
	if encoded := Encode(nil); encoded != "" {
		t.Errorf("expected empty string for no points, got %q", encoded)
	}
}

func TestLength(t *testing.T) {
	// One degree of longitude at the equator is about 111.2km.
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	}

	length := Length(points)
	if math.Abs(length-111195) > 200 {
		t.Errorf("expected ~111195m, got %.0fm", length)
	}

	if Length(points[:1]) != 0 {
		t.Error("single point should have zero length")
	}
}

func TestSample_Interval(t *testing.T) {
	// A straight 10km line sampled at 1km should yield about 11 points.
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.09}, // ~10km at the equator
	}

	sampled := Sample(points, 1000)

	if len(sampled) < 10 || len(sampled) > 12 {
		t.Errorf("expected ~11 sample points, got %d", len(sampled))
	}
	if sampled[0] != points[0] {
		t.Error("first sample should be the first input point")
	}
	if sampled[len(sampled)-1] != points[len(points)-1] {
		t.Error("last sample should be the last input point")
	}
}

func TestSample_NoInterval(t *testing.T) {
	points := []Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	sampled := Sample(points, 0)

	if len(sampled) != len(points) {
		t.Errorf("interval <= 0 should return input unchanged, got %d points", len(sampled))
	}
}
