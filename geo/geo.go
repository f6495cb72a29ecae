// path: geo/geo.go
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the meridian arc length of one degree of latitude.
const kmPerDegreeLat = math.Pi * EarthRadiusKm / 180.0

// Coordinate is a WGS 84 point, normalized to 8 decimal places (~1.1 mm)
// so stored and compared values are stable. Build one with NewCoordinate;
// invalid values are rejected, never clamped.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InvalidCoordinateError reports a latitude/longitude pair outside the
// valid WGS 84 ranges, or a non-finite value.
type InvalidCoordinateError struct {
	Lat float64
	Lng float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate (%v, %v): lat must be in [-90,90], lng in [-180,180]", e.Lat, e.Lng)
}

// Valid reports whether lat/lng are finite and in range.
func Valid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// NewCoordinate validates and normalizes a point.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if !Valid(lat, lng) {
		return Coordinate{}, &InvalidCoordinateError{Lat: lat, Lng: lng}
	}
	return Coordinate{Lat: round8(lat), Lng: round8(lng)}, nil
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

// DistanceKm returns the great-circle (haversine) distance between two
// points. DistanceKm(p, p) is exactly 0 and the function is symmetric.
func DistanceKm(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox is a cheap rectangular pre-filter around a circle. It may
// cross the antimeridian, in which case West > East and Contains handles
// the wrap.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// BoundingBoxAround derives a box guaranteed to contain every point
// within radiusKm of center. It over-approximates near the poles and the
// antimeridian rather than ever excluding an in-radius point.
func BoundingBoxAround(center Coordinate, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegreeLat

	box := BoundingBox{
		North: center.Lat + dLat,
		South: center.Lat - dLat,
	}

	if box.North >= 90 || box.South <= -90 {
		// Circle reaches a pole: every longitude is inside.
		box.North = math.Min(box.North, 90)
		box.South = math.Max(box.South, -90)
		box.East = 180
		box.West = -180
		return box
	}

	// Longitude degrees shrink with latitude; use the cosine at the
	// latitude extreme of the box so the box never undershoots.
	maxAbsLat := math.Max(math.Abs(box.North), math.Abs(box.South))
	dLng := radiusKm / (kmPerDegreeLat * math.Cos(radians(maxAbsLat)))
	if dLng >= 180 {
		box.East = 180
		box.West = -180
		return box
	}

	box.East = wrapLng(center.Lng + dLng)
	box.West = wrapLng(center.Lng - dLng)
	return box
}

// Contains reports whether p lies inside the box, handling antimeridian
// wrap (West > East).
func (b BoundingBox) Contains(p Coordinate) bool {
	if p.Lat < b.South || p.Lat > b.North {
		return false
	}
	if b.West <= b.East {
		return p.Lng >= b.West && p.Lng <= b.East
	}
	return p.Lng >= b.West || p.Lng <= b.East
}

// Wraps reports whether the box crosses the antimeridian.
func (b BoundingBox) Wraps() bool {
	return b.West > b.East
}

// BearingDegrees returns the initial bearing from a to b in [0, 360).
func BearingDegrees(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLng := radians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
