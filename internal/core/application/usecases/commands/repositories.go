// Package commands contains the lifecycle operations that modify shipments.
// Every handler follows the same pattern: validate the command, serialize on the
// tracking number, persist inside a unit of work, then invalidate cached read
// models and hand the produced events to the publisher.
package commands

import (
	"context"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ShipmentRepoFactory provides access to the shipment repository.
	// Outside of Begin/Commit the repository reads without a transaction.
	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	// ShipmentUoW manages transactions for shipment operations.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   repo := uow.ShipmentRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	ShipmentUoW interface {
		TxManager
		ShipmentRepoFactory
	}

	// ShipmentUoWFactory creates new shipment unit of work instances.
	ShipmentUoWFactory interface {
		Create() ShipmentUoW
	}

	// Predictor produces arrival estimates. It never fails: a degraded estimate
	// carries eta.ConfidenceFallback.
	Predictor interface {
		Initial(ctx context.Context, req eta.Request) eta.Estimate
		Update(ctx context.Context, req eta.Request) eta.Estimate
	}
)
