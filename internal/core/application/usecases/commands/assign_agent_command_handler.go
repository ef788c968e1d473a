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

// AssignAgentCommandHandler sets the agent and moves the shipment to Assigned
// in one state change. Only Pending shipments can be assigned.
type AssignAgentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	authorizer ports.Authorizer
	notifier   changeNotifier
	locks      *keylock.KeyedMutex
	logger     *slog.Logger
}

// NewAssignAgentCommandHandler creates a handler for agent assignment.
// locks must be the instance shared by every mutating handler.
func NewAssignAgentCommandHandler(
	uowFactory ShipmentUoWFactory,
	authorizer ports.Authorizer,
	cache ports.Cache,
	publisher ports.EventPublisher,
	locks *keylock.KeyedMutex,
	logger *slog.Logger,
) AssignAgentCommandHandler {
	return AssignAgentCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		notifier:   changeNotifier{cache: cache, publisher: publisher},
		locks:      locks,
		logger:     logger.With("component", "AssignAgentCommandHandler"),
	}
}

// Handle assigns the agent and moves a Pending shipment to Assigned in one
// state change. Any other status fails with shipment.ErrInvalidTransition.
func (h AssignAgentCommandHandler) Handle(ctx context.Context, cmd AssignAgentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !h.authorizer.CanAssign(cmd.Actor(), cmd.AgentID()) {
		return nil, errs.NewForbiddenError(cmd.Actor().String(),
			fmt.Sprintf("assign agent %s to %s", cmd.AgentID(), cmd.TrackingNumber()))
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

	event, err := s.AssignAgent(cmd.AgentID(), time.Now().UTC())
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

	h.logger.InfoContext(ctx, "agent assigned",
		"trackingNumber", s.TrackingNumber(),
		"agent", cmd.AgentID(),
		"actor", cmd.Actor())

	return s, nil
}
