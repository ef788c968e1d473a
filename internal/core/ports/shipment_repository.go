// Package ports defines the contracts between the tracking core and its adapters:
// persistence, the prediction oracle, the cache, live connections and authorization.
package ports

import (
	"context"

	"tracking/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates.
type ShipmentRepository interface {
	// Add persists a new shipment. The tracking number must not exist yet.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists changes to an existing shipment. It fails with
	// errs.ErrVersionIsInvalid when the stored row changed since it was loaded.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get loads a shipment by tracking number, errs.ErrObjectNotFound when absent.
	Get(ctx context.Context, number shipment.TrackingNumber) (*shipment.Shipment, error)
}
