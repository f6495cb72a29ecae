// path: access/guard_test.go
package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
)

// pointKmNorth returns a point exactly km due north of origin; along a
// meridian the haversine distance reduces to arc length, so the distance
// is exact up to float rounding.
func pointKmNorth(origin geo.Coordinate, km float64) geo.Coordinate {
	return geo.Coordinate{Lat: origin.Lat + km/geo.EarthRadiusKm*180/3.141592653589793, Lng: origin.Lng}
}

func TestCheckAccess_MissingCallerLocation(t *testing.T) {
	g := NewGuard()
	_, err := g.CheckAccess(nil, geo.Coordinate{Lat: 1, Lng: 1}, 5)
	assert.ErrorIs(t, err, ErrMissingCallerLocation)

	_, err = g.CheckReportPlausibility(nil, geo.Coordinate{Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, ErrMissingCallerLocation)
}

func TestCheckView_RadiusBoundary(t *testing.T) {
	g := NewGuard()
	caller := geo.Coordinate{Lat: 12.97, Lng: 77.59}

	inside := pointKmNorth(caller, 4.999999)
	d, err := g.CheckView(&caller, inside)
	require.NoError(t, err)
	assert.InDelta(t, 4.999999, d.DistanceKm, 1e-5)

	outside := pointKmNorth(caller, 5.000001)
	_, err = g.CheckView(&caller, outside)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.InDelta(t, 5.000001, denied.DistanceKm, 1e-5)
	assert.Equal(t, DefaultViewRadiusKm, denied.MaxRadiusKm)
	assert.False(t, denied.Plausibility)
}

func TestCheckAccess_ZeroDistance(t *testing.T) {
	g := NewGuard()
	p := geo.Coordinate{Lat: -33.86, Lng: 151.2}
	d, err := g.CheckAccess(&p, p, 5)
	require.NoError(t, err)
	assert.Zero(t, d.DistanceKm)
}

func TestCheckReportPlausibility_UsesSeparateRadius(t *testing.T) {
	g := NewGuard()
	reporter := geo.Coordinate{Lat: 48.85, Lng: 2.35}

	// 8 km away: outside the 5 km view radius but a plausible report.
	spot := pointKmNorth(reporter, 8)
	_, err := g.CheckView(&reporter, spot)
	assert.Error(t, err)

	d, err := g.CheckReportPlausibility(&reporter, spot)
	require.NoError(t, err)
	assert.InDelta(t, 8, d.DistanceKm, 1e-5)

	far := pointKmNorth(reporter, 10.5)
	_, err = g.CheckReportPlausibility(&reporter, far)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.True(t, denied.Plausibility)
}

func TestValidateListRadius(t *testing.T) {
	assert.NoError(t, ValidateListRadius(0.1))
	assert.NoError(t, ValidateListRadius(5))
	assert.NoError(t, ValidateListRadius(2.5))

	for _, r := range []float64{0.099, 0, -1, 5.001, 100} {
		err := ValidateListRadius(r)
		var oor *RadiusOutOfRangeError
		require.ErrorAs(t, err, &oor, "radius %v", r)
		assert.Equal(t, r, oor.RadiusKm)
	}
}
