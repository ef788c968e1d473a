package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/guard"
)

var ErrGetTrackingSnapshotQueryIsNotConstructed = errors.New(
	"GetTrackingSnapshotQuery must be created via NewGetTrackingSnapshotQuery constructor",
)

// GetTrackingSnapshotQuery reads the public view of one shipment by tracking number.
type GetTrackingSnapshotQuery struct {
	number shipment.TrackingNumber
	guard  guard.ConstructorGuard
}

// NewGetTrackingSnapshotQuery creates a query for an already parsed number.
func NewGetTrackingSnapshotQuery(number shipment.TrackingNumber) (GetTrackingSnapshotQuery, error) {
	if err := number.Validate(); err != nil {
		return GetTrackingSnapshotQuery{}, err
	}
	return GetTrackingSnapshotQuery{number: number, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTrackingSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingSnapshotQueryIsNotConstructed)
}

func (q GetTrackingSnapshotQuery) TrackingNumber() shipment.TrackingNumber {
	return q.number
}

// PlaceView is an address with its coordinate.
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

// TrackingSnapshot is what anyone holding the tracking number may see.
// Creator identity and notes are deliberately absent.
type TrackingSnapshot struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Status            string     `json:"status"`
	Pickup            PlaceView  `json:"pickup"`
	Delivery          PlaceView  `json:"delivery"`
	DistanceKm        float64    `json:"distanceKm"`
	Vehicle           string     `json:"vehicleType"`
	CurrentLocation   *PointView `json:"currentLocation,omitempty"`
	LocationUpdatedAt *time.Time `json:"locationUpdatedAt,omitempty"`
	EstimatedMinutes  float64    `json:"estimatedMinutes"`
	CurrentETAMinutes float64    `json:"currentEtaMinutes"`
	ETARange          RangeView  `json:"etaRange"`
	Confidence        string     `json:"confidence"`
	AgentAssigned     bool       `json:"agentAssigned"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	PickedUpAt        *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
}
