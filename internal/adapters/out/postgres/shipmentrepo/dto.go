// Package shipmentrepo persists shipment aggregates with GORM. It maps the
// aggregate snapshot to a flat row and back through shipment.Restore, so a
// corrupted row never becomes a live aggregate.
package shipmentrepo

import (
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

// ShipmentDTO is the row of the shipments table.
type ShipmentDTO struct {
	TrackingNumber string `gorm:"primaryKey;size:32"`

	PickupAddress   string  `gorm:"not null"`
	PickupLat       float64 `gorm:"not null"`
	PickupLng       float64 `gorm:"not null"`
	DeliveryAddress string  `gorm:"not null"`
	DeliveryLat     float64 `gorm:"not null"`
	DeliveryLng     float64 `gorm:"not null"`
	DistanceKm      float64 `gorm:"not null"`

	Vehicle string `gorm:"size:16"`
	Weather string `gorm:"size:16"`
	Route   string `gorm:"size:4"`

	Status  int        `gorm:"index;not null"`
	AgentID *uuid.UUID `gorm:"type:uuid;index"`

	CurrentLat        *float64
	CurrentLng        *float64
	LocationUpdatedAt *time.Time

	EstimatedMinutes  float64 `gorm:"not null"`
	CurrentETAMinutes float64 `gorm:"column:current_eta_minutes;not null"`
	ETALower          float64 `gorm:"column:eta_lower"`
	ETAUpper          float64 `gorm:"column:eta_upper"`
	Confidence        string  `gorm:"size:16;not null"`

	CreatorID uuid.UUID `gorm:"type:uuid;index;not null"`
	Notes     string

	CreatedAt   time.Time `gorm:"index;not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
	PickedUpAt  *time.Time
	DeliveredAt *time.Time

	Version int `gorm:"not null;default:0"`
}

// TableName overrides GORM's default naming convention.
func (ShipmentDTO) TableName() string {
	return "shipments"
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	snap := s.Snapshot()

	dto := ShipmentDTO{
		TrackingNumber:    snap.TrackingNumber.String(),
		PickupAddress:     snap.Pickup.Text(),
		PickupLat:         snap.Pickup.Coordinate().Lat(),
		PickupLng:         snap.Pickup.Coordinate().Lng(),
		DeliveryAddress:   snap.Delivery.Text(),
		DeliveryLat:       snap.Delivery.Coordinate().Lat(),
		DeliveryLng:       snap.Delivery.Coordinate().Lng(),
		DistanceKm:        snap.DistanceKm,
		Vehicle:           string(snap.Vehicle),
		Weather:           string(snap.Weather),
		Route:             string(snap.Route),
		Status:            int(snap.Status),
		LocationUpdatedAt: snap.LocationUpdatedAt,
		EstimatedMinutes:  snap.EstimatedMinutes,
		CurrentETAMinutes: snap.CurrentETAMinutes,
		ETALower:          snap.ETARange.Lower,
		ETAUpper:          snap.ETARange.Upper,
		Confidence:        snap.Confidence.String(),
		CreatorID:         snap.CreatorID.Bytes(),
		Notes:             snap.Notes,
		CreatedAt:         snap.CreatedAt,
		UpdatedAt:         snap.UpdatedAt,
		PickedUpAt:        snap.PickedUpAt,
		DeliveredAt:       snap.DeliveredAt,
		Version:           snap.Version,
	}

	if snap.AgentID != nil {
		raw := snap.AgentID.Bytes()
		dto.AgentID = &raw
	}
	if snap.CurrentLocation != nil {
		lat, lng := snap.CurrentLocation.Lat(), snap.CurrentLocation.Lng()
		dto.CurrentLat = &lat
		dto.CurrentLng = &lng
	}

	return dto
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	pickup, err := kernel.ParseAddress(dto.PickupAddress, &dto.PickupLat, &dto.PickupLng)
	if err != nil {
		return nil, err
	}
	delivery, err := kernel.ParseAddress(dto.DeliveryAddress, &dto.DeliveryLat, &dto.DeliveryLng)
	if err != nil {
		return nil, err
	}

	creatorID, err := kernel.UUIDFromBytes(dto.CreatorID[:])
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		id, agentErr := kernel.UUIDFromBytes((*dto.AgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &id
	}

	var current *kernel.Coordinate
	if dto.CurrentLat != nil && dto.CurrentLng != nil {
		c, coordErr := kernel.NewCoordinate(*dto.CurrentLat, *dto.CurrentLng)
		if coordErr != nil {
			return nil, coordErr
		}
		current = &c
	}

	return shipment.Restore(shipment.Snapshot{
		TrackingNumber:    shipment.TrackingNumber(dto.TrackingNumber),
		Pickup:            pickup,
		Delivery:          delivery,
		DistanceKm:        dto.DistanceKm,
		Vehicle:           eta.VehicleType(dto.Vehicle),
		Weather:           eta.Weather(dto.Weather),
		Route:             eta.Route(dto.Route),
		Status:            shipment.Status(dto.Status),
		AgentID:           agentID,
		CurrentLocation:   current,
		LocationUpdatedAt: utcPtr(dto.LocationUpdatedAt),
		EstimatedMinutes:  dto.EstimatedMinutes,
		CurrentETAMinutes: dto.CurrentETAMinutes,
		ETARange:          eta.Range{Lower: dto.ETALower, Upper: dto.ETAUpper},
		Confidence:        eta.Confidence(dto.Confidence),
		CreatorID:         creatorID,
		Notes:             dto.Notes,
		CreatedAt:         dto.CreatedAt.UTC(),
		UpdatedAt:         dto.UpdatedAt.UTC(),
		PickedUpAt:        utcPtr(dto.PickedUpAt),
		DeliveredAt:       utcPtr(dto.DeliveredAt),
		Version:           dto.Version,
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
