package http

import (
	"time"

	"tracking/internal/core/domain/model/shipment"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Place struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type NewShipment struct {
	Pickup      Place  `json:"pickup"`
	Delivery    Place  `json:"delivery"`
	VehicleType string `json:"vehicleType"`
	Weather     string `json:"weather"`
	Route       string `json:"route"`
	Notes       string `json:"notes"`
}

type StatusChange struct {
	Status string `json:"status"`
}

type LocationReport struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Assignment struct {
	AgentID string `json:"agentId"`
}

type PlaceView struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type PointView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RangeView struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Shipment is the full view returned to the caller of a lifecycle operation.
type Shipment struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Status            string     `json:"status"`
	Pickup            PlaceView  `json:"pickup"`
	Delivery          PlaceView  `json:"delivery"`
	DistanceKm        float64    `json:"distanceKm"`
	VehicleType       string     `json:"vehicleType"`
	Weather           string     `json:"weather"`
	Route             string     `json:"route"`
	Notes             string     `json:"notes,omitempty"`
	CreatorID         string     `json:"creatorId"`
	AgentID           *string    `json:"agentId,omitempty"`
	CurrentLocation   *PointView `json:"currentLocation,omitempty"`
	LocationUpdatedAt *time.Time `json:"locationUpdatedAt,omitempty"`
	EstimatedMinutes  float64    `json:"estimatedMinutes"`
	CurrentETAMinutes float64    `json:"currentEtaMinutes"`
	ETARange          RangeView  `json:"etaRange"`
	Confidence        string     `json:"confidence"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	PickedUpAt        *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
}

func toShipment(s *shipment.Shipment) Shipment {
	response := Shipment{
		TrackingNumber: s.TrackingNumber().String(),
		Status:         s.Status().String(),
		Pickup: PlaceView{
			Address: s.Pickup().Text(),
			Lat:     s.Pickup().Coordinate().Lat(),
			Lng:     s.Pickup().Coordinate().Lng(),
		},
		Delivery: PlaceView{
			Address: s.Delivery().Text(),
			Lat:     s.Delivery().Coordinate().Lat(),
			Lng:     s.Delivery().Coordinate().Lng(),
		},
		DistanceKm:        s.DistanceKm(),
		VehicleType:       s.Vehicle().String(),
		Weather:           string(s.Weather()),
		Route:             string(s.Route()),
		Notes:             s.Notes(),
		CreatorID:         s.CreatorID().String(),
		LocationUpdatedAt: s.LocationUpdatedAt(),
		EstimatedMinutes:  s.EstimatedMinutes(),
		CurrentETAMinutes: s.CurrentETAMinutes(),
		ETARange:          RangeView{Lower: s.ETARange().Lower, Upper: s.ETARange().Upper},
		Confidence:        s.Confidence().String(),
		CreatedAt:         s.CreatedAt(),
		UpdatedAt:         s.UpdatedAt(),
		PickedUpAt:        s.PickedUpAt(),
		DeliveredAt:       s.DeliveredAt(),
	}
	if agent := s.AgentID(); agent != nil {
		id := agent.String()
		response.AgentID = &id
	}
	if location := s.CurrentLocation(); location != nil {
		response.CurrentLocation = &PointView{Lat: location.Lat(), Lng: location.Lng()}
	}
	return response
}
