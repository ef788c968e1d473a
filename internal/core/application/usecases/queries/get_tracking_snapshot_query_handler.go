package queries

import (
	"context"
	"database/sql"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetTrackingSnapshotQueryHandler serves the public tracking page.
// Entries live for TrackingSnapshotTTL and are invalidated by every mutation of the shipment.
//
// Example:
//
//	handler := NewGetTrackingSnapshotQueryHandler(db, cache)
//	query, _ := NewGetTrackingSnapshotQuery("TRKM4X2Q9ZAB12C")
//	snapshot, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown tracking number
//	}
type GetTrackingSnapshotQueryHandler struct {
	db    *gorm.DB
	cache *ReadModelCache
}

// NewGetTrackingSnapshotQueryHandler creates the handler. cache must be the
// instance the commands invalidate.
func NewGetTrackingSnapshotQueryHandler(db *gorm.DB, cache *ReadModelCache) GetTrackingSnapshotQueryHandler {
	return GetTrackingSnapshotQueryHandler{db: db, cache: cache}
}

// Handle returns the public view of one shipment.
// Returns errs.ErrObjectNotFound for an unknown tracking number; misses are not cached.
func (h GetTrackingSnapshotQueryHandler) Handle(ctx context.Context, query GetTrackingSnapshotQuery) (TrackingSnapshot, error) {
	if err := query.Validate(); err != nil {
		return TrackingSnapshot{}, err
	}

	number := query.TrackingNumber()
	return readThrough(ctx, h.cache, TrackingCacheKey(number), TrackingSnapshotTTL,
		func(ctx context.Context) (TrackingSnapshot, error) {
			return h.load(ctx, number)
		})
}

type snapshotRow struct {
	TrackingNumber    string
	Status            int
	PickupAddress     string
	PickupLat         float64
	PickupLng         float64
	DeliveryAddress   string
	DeliveryLat       float64
	DeliveryLng       float64
	DistanceKm        float64
	Vehicle           string
	CurrentLat        sql.NullFloat64
	CurrentLng        sql.NullFloat64
	LocationUpdatedAt sql.NullTime
	EstimatedMinutes  float64
	CurrentETAMinutes float64 `gorm:"column:current_eta_minutes"`
	ETALower          float64 `gorm:"column:eta_lower"`
	ETAUpper          float64 `gorm:"column:eta_upper"`
	Confidence        string
	HasAgent          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PickedUpAt        sql.NullTime
	DeliveredAt       sql.NullTime
}

func (h GetTrackingSnapshotQueryHandler) load(ctx context.Context, number shipment.TrackingNumber) (TrackingSnapshot, error) {
	var row snapshotRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			tracking_number,
			status,
			pickup_address, pickup_lat, pickup_lng,
			delivery_address, delivery_lat, delivery_lng,
			distance_km,
			vehicle,
			current_lat, current_lng, location_updated_at,
			estimated_minutes,
			current_eta_minutes, eta_lower, eta_upper,
			confidence,
			agent_id IS NOT NULL AS has_agent,
			created_at, updated_at, picked_up_at, delivered_at
		FROM shipments
		WHERE tracking_number = ?
	`, number.String()).Scan(&row)
	if result.Error != nil {
		return TrackingSnapshot{}, result.Error
	}
	if result.RowsAffected == 0 {
		return TrackingSnapshot{}, errs.NewObjectNotFoundError("trackingNumber", number.String())
	}

	snapshot := TrackingSnapshot{
		TrackingNumber:    row.TrackingNumber,
		Status:            shipment.Status(row.Status).String(),
		Pickup:            PlaceView{Address: row.PickupAddress, Lat: row.PickupLat, Lng: row.PickupLng},
		Delivery:          PlaceView{Address: row.DeliveryAddress, Lat: row.DeliveryLat, Lng: row.DeliveryLng},
		DistanceKm:        row.DistanceKm,
		Vehicle:           row.Vehicle,
		EstimatedMinutes:  row.EstimatedMinutes,
		CurrentETAMinutes: row.CurrentETAMinutes,
		ETARange:          RangeView{Lower: row.ETALower, Upper: row.ETAUpper},
		Confidence:        row.Confidence,
		AgentAssigned:     row.HasAgent,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
		LocationUpdatedAt: nullTime(row.LocationUpdatedAt),
		PickedUpAt:        nullTime(row.PickedUpAt),
		DeliveredAt:       nullTime(row.DeliveredAt),
	}
	if row.CurrentLat.Valid && row.CurrentLng.Valid {
		snapshot.CurrentLocation = &PointView{Lat: row.CurrentLat.Float64, Lng: row.CurrentLng.Float64}
	}

	return snapshot, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
