package eta

import "strings"

// VehicleType selects the base speed used for predictions.
type VehicleType string

const (
	VehicleCar   VehicleType = "Car"
	VehicleBike  VehicleType = "Bike"
	VehicleTruck VehicleType = "Truck"
	VehicleVan   VehicleType = "Van"
)

// base speeds in km/h
var baseSpeeds = map[VehicleType]float64{
	VehicleCar:   60,
	VehicleBike:  40,
	VehicleTruck: 50,
	VehicleVan:   55,
}

// ParseVehicleType is case-insensitive. Unknown or empty input yields VehicleCar
// so a bad vehicle never fails a whole prediction.
func ParseVehicleType(s string) VehicleType {
	for v := range baseSpeeds {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return VehicleCar
}

// BaseSpeed returns the vehicle's base speed in km/h, the car speed for unknown types.
func (v VehicleType) BaseSpeed() float64 {
	if speed, ok := baseSpeeds[v]; ok {
		return speed
	}
	return baseSpeeds[VehicleCar]
}

func (v VehicleType) String() string {
	return string(v)
}

// Weather is the condition reported at prediction time.
type Weather string

const (
	WeatherClear Weather = "Clear"
	WeatherRainy Weather = "Rainy"
	WeatherFoggy Weather = "Foggy"
	WeatherSnowy Weather = "Snowy"
)

// ParseWeather defaults to WeatherClear.
func ParseWeather(s string) Weather {
	for _, w := range []Weather{WeatherClear, WeatherRainy, WeatherFoggy, WeatherSnowy} {
		if strings.EqualFold(string(w), strings.TrimSpace(s)) {
			return w
		}
	}
	return WeatherClear
}

// Route is the oracle's road class: A highway, B urban, C mixed.
type Route string

const (
	RouteHighway Route = "A"
	RouteUrban   Route = "B"
	RouteMixed   Route = "C"
)

// ParseRoute defaults to RouteHighway.
func ParseRoute(s string) Route {
	for _, r := range []Route{RouteHighway, RouteUrban, RouteMixed} {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r
		}
	}
	return RouteHighway
}
