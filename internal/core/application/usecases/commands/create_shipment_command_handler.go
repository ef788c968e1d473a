package commands

import (
	"context"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
)

// CreateShipmentCommandHandler registers a shipment with its baseline estimate.
// Nobody can be subscribed to a tracking number that did not exist, so creation
// publishes nothing; it only invalidates the analytics read models.
//
// Example:
//
//	handler := NewCreateShipmentCommandHandler(uowFactory, predictor, cache, logger)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("shipment creation failed: %w", err)
//	}
//	fmt.Println("tracking number:", created.TrackingNumber())
type CreateShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	predictor  Predictor
	cache      ports.Cache
	logger     *slog.Logger
}

// NewCreateShipmentCommandHandler creates a handler for shipment creation.
// Requires a ShipmentUoWFactory for transactional persistence.
func NewCreateShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	predictor Predictor,
	cache ports.Cache,
	logger *slog.Logger,
) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		predictor:  predictor,
		cache:      cache,
		logger:     logger.With("component", "CreateShipmentCommandHandler"),
	}
}

// Handle computes the distance, asks the predictor for the baseline (initial budget)
// and persists the Pending shipment.
func (h CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	distance, err := shipment.Distance(cmd.Pickup(), cmd.Delivery())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	opts := cmd.Options()
	baseline := h.predictor.Initial(ctx, eta.NewRequest(distance, opts.Vehicle, opts.Weather, opts.Route, now))

	created, err := shipment.NewShipment(
		shipment.NewTrackingNumber(now),
		cmd.CreatorID(),
		cmd.Pickup(),
		cmd.Delivery(),
		opts,
		baseline,
		now,
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ShipmentRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.cache.InvalidateByPrefix(context.WithoutCancel(ctx), queries.AnalyticsCachePrefix)

	h.logger.InfoContext(ctx, "shipment created",
		"trackingNumber", created.TrackingNumber(),
		"distanceKm", created.DistanceKm(),
		"estimatedMinutes", created.EstimatedMinutes(),
		"confidence", created.Confidence())

	return created, nil
}
