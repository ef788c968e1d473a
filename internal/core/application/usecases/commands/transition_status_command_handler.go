package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/keylock"
)

// TransitionStatusCommandHandler applies a status change.
// An illegal edge returns *shipment.InvalidTransitionError and leaves the
// stored shipment untouched.
type TransitionStatusCommandHandler struct {
	uowFactory ShipmentUoWFactory
	authorizer ports.Authorizer
	notifier   changeNotifier
	locks      *keylock.KeyedMutex
	logger     *slog.Logger
}

// NewTransitionStatusCommandHandler creates a handler for status changes.
// locks must be the instance shared by every mutating handler.
func NewTransitionStatusCommandHandler(
	uowFactory ShipmentUoWFactory,
	authorizer ports.Authorizer,
	cache ports.Cache,
	publisher ports.EventPublisher,
	locks *keylock.KeyedMutex,
	logger *slog.Logger,
) TransitionStatusCommandHandler {
	return TransitionStatusCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		notifier:   changeNotifier{cache: cache, publisher: publisher},
		locks:      locks,
		logger:     logger.With("component", "TransitionStatusCommandHandler"),
	}
}

// Handle loads the shipment, checks the actor's capability, applies the
// transition and persists it. The per-tracking-number lock is held until the
// event is handed to the publisher, so events of one shipment leave in the
// order they were produced.
func (h TransitionStatusCommandHandler) Handle(ctx context.Context, cmd TransitionStatusCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.TrackingNumber().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()
	s, err := repo.Get(ctx, cmd.TrackingNumber())
	if err != nil {
		return nil, err
	}

	if !h.authorizer.CanTransition(cmd.Actor(), s, cmd.Status()) {
		return nil, errs.NewForbiddenError(cmd.Actor().String(),
			fmt.Sprintf("move %s to %s", cmd.TrackingNumber(), cmd.Status()))
	}

	event, err := s.TransitionTo(cmd.Status(), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.shipmentChanged(ctx, uow, s.TrackingNumber(), event)

	h.logger.InfoContext(ctx, "status changed",
		"trackingNumber", s.TrackingNumber(),
		"from", event.OldStatus,
		"to", event.NewStatus,
		"actor", cmd.Actor())

	return s, nil
}
