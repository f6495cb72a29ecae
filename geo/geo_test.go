// path: geo/geo_test.go
package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate_Validation(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		ok   bool
	}{
		{"origin", 0, 0, true},
		{"lat north pole", 90, 0, true},
		{"lat south pole", -90, 0, true},
		{"lng antimeridian", 0, 180, true},
		{"lng negative antimeridian", 0, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -90.0001, 0, false},
		{"lng too high", 0, 180.0001, false},
		{"lng too low", 0, -180.0001, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lng", 0, math.NaN(), false},
		{"inf lat", math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lng)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ice *InvalidCoordinateError
			require.ErrorAs(t, err, &ice)
			if math.IsNaN(tt.lat) {
				assert.True(t, math.IsNaN(ice.Lat))
			} else {
				assert.Equal(t, tt.lat, ice.Lat)
			}
		})
	}
}

func TestNewCoordinate_NormalizesToEightDecimals(t *testing.T) {
	c, err := NewCoordinate(12.123456789123, -77.987654321987)
	require.NoError(t, err)
	assert.Equal(t, 12.12345679, c.Lat)
	assert.Equal(t, -77.98765432, c.Lng)
}

func TestDistanceKm_IdentityAndSymmetry(t *testing.T) {
	points := []Coordinate{
		{0, 0},
		{48.8566, 2.3522},
		{-33.8688, 151.2093},
		{89.9, -170},
		{-89.9, 170},
	}

	for _, p := range points {
		assert.Zero(t, DistanceKm(p, p))
	}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-12)
		}
	}
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	paris := Coordinate{48.8566, 2.3522}
	london := Coordinate{51.5074, -0.1278}
	// Haversine with R=6371 gives ~343.5 km.
	assert.InDelta(t, 343.5, DistanceKm(paris, london), 1.0)

	// One degree of longitude on the equator.
	assert.InDelta(t, math.Pi*EarthRadiusKm/180, DistanceKm(Coordinate{0, 0}, Coordinate{0, 1}), 1e-9)

	// One degree of latitude anywhere on a meridian.
	assert.InDelta(t, math.Pi*EarthRadiusKm/180, DistanceKm(Coordinate{10, 30}, Coordinate{11, 30}), 1e-9)
}

func TestBoundingBoxAround_NeverExcludesInRadiusPoints(t *testing.T) {
	centers := []Coordinate{
		{0, 0},
		{48.8566, 2.3522},
		{-33.8688, 151.2093},
		{60.17, 24.94},
		{0.5, 179.9}, // antimeridian
		{89.5, 0},    // near pole
	}
	radii := []float64{0.1, 1, 5, 50}

	for _, center := range centers {
		for _, radius := range radii {
			box := BoundingBoxAround(center, radius)
			// Sweep the circle boundary and a few interior rings.
			for _, frac := range []float64{0.25, 0.75, 0.999} {
				for deg := 0.0; deg < 360; deg += 15 {
					p := pointAt(center, radius*frac, deg)
					if !Valid(p.Lat, p.Lng) {
						continue
					}
					assert.True(t, box.Contains(p),
						"center=%v radius=%v bearing=%v frac=%v point=%v box=%+v",
						center, radius, deg, frac, p, box)
				}
			}
		}
	}
}

// pointAt computes a destination point on the sphere, radius km from
// center at the given bearing.
func pointAt(center Coordinate, km, bearingDeg float64) Coordinate {
	d := km / EarthRadiusKm
	brg := bearingDeg * math.Pi / 180
	lat1 := center.Lat * math.Pi / 180
	lng1 := center.Lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lng2 := lng1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	lng2 = math.Mod(lng2+3*math.Pi, 2*math.Pi) - math.Pi
	return Coordinate{Lat: lat2 * 180 / math.Pi, Lng: lng2 * 180 / math.Pi}
}

func TestBoundingBox_AntimeridianWrap(t *testing.T) {
	box := BoundingBoxAround(Coordinate{0, 179.95}, 20)
	assert.True(t, box.Wraps())
	assert.True(t, box.Contains(Coordinate{0, -179.95}))
	assert.True(t, box.Contains(Coordinate{0, 179.9}))
	assert.False(t, box.Contains(Coordinate{0, 0}))
}

func TestBearingDegrees(t *testing.T) {
	origin := Coordinate{0, 0}

	assert.InDelta(t, 0, BearingDegrees(origin, Coordinate{1, 0}), 1e-9)
	assert.InDelta(t, 90, BearingDegrees(origin, Coordinate{0, 1}), 1e-9)
	assert.InDelta(t, 180, BearingDegrees(origin, Coordinate{-1, 0}), 1e-9)
	assert.InDelta(t, 270, BearingDegrees(origin, Coordinate{0, -1}), 1e-9)

	b := BearingDegrees(Coordinate{48.8566, 2.3522}, Coordinate{51.5074, -0.1278})
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}
