package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/keylock"
)

// UpdateLocationCommandHandler stores a new agent position and the estimate
// recomputed from it, then publishes LocationUpdated and ETAChanged as one batch.
//
// The predictor runs before the transaction is opened, so a slow oracle never
// holds a database transaction. A predictor outage still succeeds, with the
// fallback confidence.
type UpdateLocationCommandHandler struct {
	uowFactory ShipmentUoWFactory
	predictor  Predictor
	authorizer ports.Authorizer
	notifier   changeNotifier
	locks      *keylock.KeyedMutex
	logger     *slog.Logger
}

// NewUpdateLocationCommandHandler creates a handler for agent location reports.
// locks must be the instance shared by every mutating handler.
func NewUpdateLocationCommandHandler(
	uowFactory ShipmentUoWFactory,
	predictor Predictor,
	authorizer ports.Authorizer,
	cache ports.Cache,
	publisher ports.EventPublisher,
	locks *keylock.KeyedMutex,
	logger *slog.Logger,
) UpdateLocationCommandHandler {
	return UpdateLocationCommandHandler{
		uowFactory: uowFactory,
		predictor:  predictor,
		authorizer: authorizer,
		notifier:   changeNotifier{cache: cache, publisher: publisher},
		locks:      locks,
		logger:     logger.With("component", "UpdateLocationCommandHandler"),
	}
}

// Handle stores the reported position with a recomputed estimate.
// Delivered and cancelled shipments reject the report with shipment.ErrShipmentIsClosed.
func (h UpdateLocationCommandHandler) Handle(ctx context.Context, cmd UpdateLocationCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.TrackingNumber().String())
	defer unlock()

	uow := h.uowFactory.Create()

	s, err := uow.ShipmentRepository().Get(ctx, cmd.TrackingNumber())
	if err != nil {
		return nil, err
	}

	if !h.authorizer.CanUpdateLocation(cmd.Actor(), s) {
		return nil, errs.NewForbiddenError(cmd.Actor().String(),
			fmt.Sprintf("report the location of %s", cmd.TrackingNumber()))
	}
	if s.Status().IsTerminal() {
		return nil, fmt.Errorf("%w: %s", shipment.ErrShipmentIsClosed, s.Status())
	}

	now := time.Now().UTC()
	remaining, err := cmd.Location().DistanceTo(s.Delivery().Coordinate())
	if err != nil {
		return nil, err
	}
	estimate := h.predictor.Update(ctx, eta.NewRequest(remaining, s.Vehicle(), s.Weather(), s.Route(), now))

	locationEvent, etaEvent, err := s.UpdateLocation(cmd.Location(), estimate, now)
	if err != nil {
		return nil, err
	}

	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ShipmentRepository().Update(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.shipmentChanged(ctx, uow, s.TrackingNumber(), locationEvent, etaEvent)

	if estimate.Confidence.IsDegraded() {
		h.logger.WarnContext(ctx, "location stored with fallback estimate",
			"trackingNumber", s.TrackingNumber(),
			"etaMinutes", estimate.Minutes)
	}

	return s, nil
}
