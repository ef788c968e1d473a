package kernel

import (
	"errors"
	"fmt"
	"math"

	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// EarthRadiusKm is the mean earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
)

var (
	// ErrInvalidCoordinate is matched by every InvalidCoordinateError.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrCoordinateIsNotConstructed is returned when a zero Coordinate is used.
	ErrCoordinateIsNotConstructed = errs.NewValueIsRequiredError(
		"coordinate must be created via NewCoordinate constructor")
)

// InvalidCoordinateError is returned for a latitude/longitude pair outside of
// [-90,90]×[-180,180]. errors.Is matches both ErrInvalidCoordinate and the
// underlying range error.
type InvalidCoordinateError struct {
	Lat   float64
	Lng   float64
	Cause error
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("%s (%g, %g): %v", ErrInvalidCoordinate, e.Lat, e.Lng, e.Cause)
}

func (e *InvalidCoordinateError) Unwrap() []error {
	return []error{ErrInvalidCoordinate, e.Cause}
}

// Coordinate is an immutable WGS84 point. The zero value is invalid.
type Coordinate struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewCoordinate validates lat and lng and returns the point.
//
// Example:
//
//	c, err := kernel.NewCoordinate(28.6139, 77.2090)
//	if errors.Is(err, kernel.ErrInvalidCoordinate) {
//	    // reject at the boundary
//	}
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setLat(lat), c.setLng(lng)); err != nil {
		return Coordinate{}, &InvalidCoordinateError{Lat: lat, Lng: lng, Cause: err}
	}

	return c, nil
}

// Validate reports whether the coordinate was built by NewCoordinate.
func (c Coordinate) Validate() error {
	return c.guard.Validate(ErrCoordinateIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (c Coordinate) Lat() float64 {
	return c.lat
}

// Lng returns the longitude in degrees.
func (c Coordinate) Lng() float64 {
	return c.lng
}

func (c Coordinate) String() string {
	return fmt.Sprintf("Coordinate(%.6f,%.6f)", c.lat, c.lng)
}

// IsEqual compares two constructed coordinates.
func (c Coordinate) IsEqual(other Coordinate) (bool, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return c.lat == other.lat && c.lng == other.lng, nil
}

// DistanceTo returns the great-circle distance in kilometres between two points
// using the haversine formula. The result is symmetric and never negative.
func (c Coordinate) DistanceTo(other Coordinate) (float64, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	dLat := degToRad(other.lat - c.lat)
	dLng := degToRad(other.lng - c.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(c.lat))*math.Cos(degToRad(other.lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a)), nil
}

func (c *Coordinate) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	c.lat = lat
	return nil
}

func (c *Coordinate) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	c.lng = lng
	return nil
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
