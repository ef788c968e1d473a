package shipment

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
)

// Snapshot is the flat, persistence friendly state of a Shipment.
// It is produced by Shipment.Snapshot and consumed by Restore.
type Snapshot struct {
	TrackingNumber    TrackingNumber
	Pickup            kernel.Address
	Delivery          kernel.Address
	DistanceKm        float64
	Vehicle           eta.VehicleType
	Weather           eta.Weather
	Route             eta.Route
	Status            Status
	AgentID           *kernel.UUID
	CurrentLocation   *kernel.Coordinate
	LocationUpdatedAt *time.Time
	EstimatedMinutes  float64
	CurrentETAMinutes float64
	ETARange          eta.Range
	Confidence        eta.Confidence
	CreatorID         kernel.UUID
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PickedUpAt        *time.Time
	DeliveredAt       *time.Time
	Version           int
}

// Snapshot copies the aggregate state.
func (s *Shipment) Snapshot() Snapshot {
	return Snapshot{
		TrackingNumber:    s.trackingNumber,
		Pickup:            s.pickup,
		Delivery:          s.delivery,
		DistanceKm:        s.distanceKm,
		Vehicle:           s.vehicle,
		Weather:           s.weather,
		Route:             s.route,
		Status:            s.status,
		AgentID:           s.agentID,
		CurrentLocation:   s.currentLocation,
		LocationUpdatedAt: s.locationUpdatedAt,
		EstimatedMinutes:  s.estimatedMinutes,
		CurrentETAMinutes: s.currentETA,
		ETARange:          s.etaRange,
		Confidence:        s.confidence,
		CreatorID:         s.creatorID,
		Notes:             s.notes,
		CreatedAt:         s.createdAt,
		UpdatedAt:         s.updatedAt,
		PickedUpAt:        s.pickedUpAt,
		DeliveredAt:       s.deliveredAt,
		Version:           s.version,
	}
}

// Restore rebuilds a shipment loaded from storage and re-checks every invariant,
// so a corrupted row never becomes a live aggregate.
func Restore(snap Snapshot) (*Shipment, error) {
	s := &Shipment{
		vehicle:           snap.Vehicle,
		weather:           snap.Weather,
		route:             snap.Route,
		agentID:           snap.AgentID,
		currentLocation:   snap.CurrentLocation,
		locationUpdatedAt: snap.LocationUpdatedAt,
		estimatedMinutes:  snap.EstimatedMinutes,
		notes:             snap.Notes,
		createdAt:         snap.CreatedAt,
		updatedAt:         snap.UpdatedAt,
		pickedUpAt:        snap.PickedUpAt,
		deliveredAt:       snap.DeliveredAt,
		version:           snap.Version,
		isConstructed:     true,
	}

	if err := errors.Join(
		s.setTrackingNumber(snap.TrackingNumber),
		s.setCreator(snap.CreatorID),
		s.setAddresses(snap.Pickup, snap.Delivery),
		s.setEstimate(eta.Estimate{
			Minutes:    snap.CurrentETAMinutes,
			Confidence: snap.Confidence,
			Range:      snap.ETARange,
		}),
		snap.Status.Validate(),
	); err != nil {
		return nil, err
	}
	s.status = snap.Status

	if snap.CurrentLocation != nil {
		if err := snap.CurrentLocation.Validate(); err != nil {
			return nil, err
		}
	}
	if snap.AgentID != nil {
		if err := snap.AgentID.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.CheckInvariants(); err != nil {
		return nil, err
	}

	return s, nil
}
