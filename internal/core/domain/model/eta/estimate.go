package eta

import (
	"fmt"
	"math"
	"time"

	"tracking/internal/pkg/errs"
)

const (
	// FallbackBufferFactor pads the fallback formula for the missing traffic and weather signal.
	FallbackBufferFactor = 1.2

	// fallbackRangeSpread is the relative width of the fallback range on each side.
	fallbackRangeSpread = 0.2

	DefaultTrafficFactor = 1.0
)

// Range is the lower and upper bound of an estimate in minutes.
type Range struct {
	Lower float64
	Upper float64
}

// Estimate is the result of a prediction.
type Estimate struct {
	Minutes    float64
	Confidence Confidence
	Range      Range
}

// Validate checks that minutes are a finite non-negative number and the label is known.
func (e Estimate) Validate() error {
	if math.IsNaN(e.Minutes) || math.IsInf(e.Minutes, 0) || e.Minutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause("minutes", fmt.Errorf("%v is not a usable ETA", e.Minutes))
	}
	return e.Confidence.Validate()
}

// Request carries every input of a prediction.
type Request struct {
	DistanceKm    float64
	Vehicle       VehicleType
	Weather       Weather
	Route         Route
	TrafficFactor float64
	At            time.Time
}

// NewRequest fills defaults for traffic factor and vehicle.
func NewRequest(distanceKm float64, vehicle VehicleType, weather Weather, route Route, at time.Time) Request {
	if vehicle == "" {
		vehicle = VehicleCar
	}
	if weather == "" {
		weather = WeatherClear
	}
	if route == "" {
		route = RouteHighway
	}
	return Request{
		DistanceKm:    distanceKm,
		Vehicle:       vehicle,
		Weather:       weather,
		Route:         route,
		TrafficFactor: DefaultTrafficFactor,
		At:            at,
	}
}

// BaseSpeed is the vehicle's base speed in km/h.
func (r Request) BaseSpeed() float64 {
	return r.Vehicle.BaseSpeed()
}

// TimeOfDay is the hour 0..23 of the request time.
func (r Request) TimeOfDay() int {
	return r.At.Hour()
}

// DayOfWeek is 0 for Monday through 6 for Sunday.
func (r Request) DayOfWeek() int {
	return (int(r.At.Weekday()) + 6) % 7
}

// Fallback computes (distance / base speed) * 60 * FallbackBufferFactor.
// It never fails: unusable distances count as zero.
func Fallback(distanceKm float64, vehicle VehicleType) Estimate {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		distanceKm = 0
	}

	minutes := Round2(distanceKm / vehicle.BaseSpeed() * 60 * FallbackBufferFactor)

	return Estimate{
		Minutes:    minutes,
		Confidence: ConfidenceFallback,
		Range: Range{
			Lower: Round2(minutes * (1 - fallbackRangeSpread)),
			Upper: Round2(minutes * (1 + fallbackRangeSpread)),
		},
	}
}

// Round2 rounds v to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
