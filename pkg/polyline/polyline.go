// Package polyline provides encoding and decoding utilities for Google's polyline algorithm.
// The polyline algorithm is documented at: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"
)

// Point represents a geographic point with latitude and longitude.
type Point struct {
	Lat float64
	Lon float64
}

// Decode decodes a polyline-encoded string into a slice of points.
// The polyline format uses precision of 5 decimal places (the standard
// Google directions format).
func Decode(encoded string) []Point {
	if encoded == "" {
		return nil
	}

	var points []Point
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lat += latDelta

		lonDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lon += lonDelta

		points = append(points, Point{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
	}

	return points
}

// decodeValue decodes a single value from the polyline at the given index.
// Returns the decoded delta value and the new index position.
func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Apply two's complement for negative values
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Encode encodes a slice of points into a polyline-encoded string.
// Used to ship synthetic paths (fallback lines, flight arcs) in the same
// wire shape as provider routes.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(points)*4)
	prevLat := 0
	prevLon := 0

	for _, p := range points {
		lat := int(math.Round(p.Lat * 1e5))
		lon := int(math.Round(p.Lon * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

// encodeValue encodes a single integer value using the polyline algorithm.
func encodeValue(buf []byte, value int) []byte {
	// Invert if negative
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	// Encode in 5-bit chunks
	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

// Length calculates the total length of a polyline in meters using the haversine formula.
func Length(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += haversineDistance(points[i-1], points[i])
	}
	return total
}

// Sample returns points sampled at approximately the specified interval
// along the polyline. Keeps display paths at a manageable density when a
// provider route carries thousands of vertices.
func Sample(points []Point, intervalMeters float64) []Point {
	if len(points) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		return points
	}

	sampled := []Point{points[0]}
	accumulated := 0.0

	for i := 1; i < len(points); i++ {
		segmentDist := haversineDistance(points[i-1], points[i])

		for accumulated+segmentDist >= intervalMeters {
			remaining := intervalMeters - accumulated
			fraction := remaining / segmentDist

			newLat := points[i-1].Lat + fraction*(points[i].Lat-points[i-1].Lat)
			newLon := points[i-1].Lon + fraction*(points[i].Lon-points[i-1].Lon)
			sampled = append(sampled, Point{Lat: newLat, Lon: newLon})

			segmentDist -= remaining
			accumulated = 0
		}

		accumulated += segmentDist
	}

	// Always include the last point if it's not already included
	last := points[len(points)-1]
	if len(sampled) == 0 || sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}

	return sampled
}

const earthRadiusMeters = 6371000

func haversineDistance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
