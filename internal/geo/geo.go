// Package geo provides great-circle math and synthetic path generation for
// trip planning.
package geo

import "math"

const (
	// earthRadiusMeters is the mean Earth radius used for haversine distance.
	earthRadiusMeters = 6371000

	// metersPerDegreeLat approximates one degree of latitude (~111 km).
	metersPerDegreeLat = 111000

	// arcBulgeFraction scales the flight arc's peak offset to 2% of the
	// total great-circle distance, so short and long routes bulge alike.
	arcBulgeFraction = 0.02

	// DefaultArcPoints is the number of interpolated points in a flight arc.
	DefaultArcPoints = 100
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is within coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Interpolate returns the point a fraction t along the straight lat/lon line
// from a to b. t is clamped to [0, 1].
func Interpolate(a, b Point, t float64) Point {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}
}

// FlightArc generates n interpolated points from origin to destination with
// a parabolic latitude bulge: zero at the endpoints, maximal at the
// midpoint, scaled to 2% of the great-circle distance. This is a display
// arc, not a geodesic; both endpoints are emitted exactly.
func FlightArc(origin, destination Point, n int) []Point {
	if n < 2 {
		n = DefaultArcPoints
	}

	peakDegrees := Distance(origin, destination) * arcBulgeFraction / metersPerDegreeLat

	points := make([]Point, n)
	points[0] = origin
	points[n-1] = destination
	for i := 1; i < n-1; i++ {
		t := float64(i) / float64(n-1)
		p := Interpolate(origin, destination, t)
		// 4t(1-t) is 0 at t=0 and t=1, 1 at t=0.5.
		p.Lat += peakDegrees * 4 * t * (1 - t)
		points[i] = p
	}
	return points
}

// PathLength returns the summed great-circle length of a path in meters.
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
