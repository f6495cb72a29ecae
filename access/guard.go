// path: access/guard.go
package access

import (
	"errors"
	"fmt"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
)

// Defaults for the proximity rules. The view radius gates reading,
// flagging and status-updating a single record; the report radius is a
// separate plausibility bound on where a new issue may be placed
// relative to the reporter. The two must not be conflated.
const (
	DefaultViewRadiusKm   = 5.0
	DefaultReportRadiusKm = 10.0

	MinListRadiusKm = 0.1
	MaxListRadiusKm = 5.0
)

// ErrMissingCallerLocation is returned when an operation that needs the
// caller's position was given none.
var ErrMissingCallerLocation = errors.New("caller location required")

// DeniedError is the deny outcome of a proximity check. It carries the
// measured distance so the caller can explain the rejection.
type DeniedError struct {
	DistanceKm   float64
	MaxRadiusKm  float64
	Plausibility bool
}

func (e *DeniedError) Error() string {
	if e.Plausibility {
		return fmt.Sprintf("reported location is %.3f km from the reporter, beyond the %.1f km plausibility bound", e.DistanceKm, e.MaxRadiusKm)
	}
	return fmt.Sprintf("target is %.3f km away, beyond the %.1f km access radius", e.DistanceKm, e.MaxRadiusKm)
}

// RadiusOutOfRangeError rejects list radii outside [0.1, 5] km. Values
// are rejected, never clamped.
type RadiusOutOfRangeError struct {
	RadiusKm float64
}

func (e *RadiusOutOfRangeError) Error() string {
	return fmt.Sprintf("radius %.3f km out of range [%.1f, %.1f]", e.RadiusKm, MinListRadiusKm, MaxListRadiusKm)
}

// Decision is the admit outcome, annotated with the measured distance.
type Decision struct {
	DistanceKm float64
}

// Guard decides proximity-based access. It is a pure decision function:
// no I/O, no side effects; callers fetch the target's location first.
type Guard struct {
	ViewRadiusKm   float64
	ReportRadiusKm float64
}

func NewGuard() Guard {
	return Guard{
		ViewRadiusKm:   DefaultViewRadiusKm,
		ReportRadiusKm: DefaultReportRadiusKm,
	}
}

// CheckAccess admits the caller when the target lies within maxRadiusKm
// of the caller's position. caller == nil means the caller supplied no
// location.
func (g Guard) CheckAccess(caller *geo.Coordinate, target geo.Coordinate, maxRadiusKm float64) (Decision, error) {
	if caller == nil {
		return Decision{}, ErrMissingCallerLocation
	}
	d := geo.DistanceKm(*caller, target)
	if d > maxRadiusKm {
		return Decision{}, &DeniedError{DistanceKm: d, MaxRadiusKm: maxRadiusKm}
	}
	return Decision{DistanceKm: d}, nil
}

// CheckView applies the default view/flag/status radius.
func (g Guard) CheckView(caller *geo.Coordinate, target geo.Coordinate) (Decision, error) {
	return g.CheckAccess(caller, target, g.ViewRadiusKm)
}

// CheckReportPlausibility validates that a newly reported issue's
// location is plausible relative to the reporter's current position.
// This is a distinct rule from viewing access.
func (g Guard) CheckReportPlausibility(reporter *geo.Coordinate, reported geo.Coordinate) (Decision, error) {
	if reporter == nil {
		return Decision{}, ErrMissingCallerLocation
	}
	d := geo.DistanceKm(*reporter, reported)
	if d > g.ReportRadiusKm {
		return Decision{}, &DeniedError{DistanceKm: d, MaxRadiusKm: g.ReportRadiusKm, Plausibility: true}
	}
	return Decision{DistanceKm: d}, nil
}

// ValidateListRadius bounds the radius of list/search queries.
func ValidateListRadius(radiusKm float64) error {
	if radiusKm < MinListRadiusKm || radiusKm > MaxListRadiusKm {
		return &RadiusOutOfRangeError{RadiusKm: radiusKm}
	}
	return nil
}
