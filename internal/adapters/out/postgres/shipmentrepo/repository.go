package shipmentrepo

import (
	"context"
	"errors"
	"fmt"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormShipmentRepository implements ports.ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(number shipment.TrackingNumber, aggregate any)
}

// NewGormShipmentRepository creates a new GORM shipment repository.
func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new shipment row.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.TrackingNumber(), aggregate)
	return nil
}

// Update writes the aggregate when the stored version still matches the loaded one
// and bumps the version. A concurrent writer makes it fail with errs.ErrVersionIsInvalid.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	expected := dto.Version
	dto.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&ShipmentDTO{}).
		Where("tracking_number = ? AND version = ?", dto.TrackingNumber, expected).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&ShipmentDTO{}).
			Where("tracking_number = ?", dto.TrackingNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("trackingNumber", dto.TrackingNumber)
		}
		return errs.NewVersionIsInvalidError("shipment",
			fmt.Errorf("%s was modified concurrently, loaded version %d", dto.TrackingNumber, expected))
	}

	r.tracker.TrackAggregate(aggregate.TrackingNumber(), aggregate)
	return nil
}

// Get loads a shipment by tracking number.
func (r *GormShipmentRepository) Get(ctx context.Context, number shipment.TrackingNumber) (*shipment.Shipment, error) {
	if err := number.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "tracking_number = ?", number.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("trackingNumber", number.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
