package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/guard"
)

var ErrTransitionStatusCommandIsNotConstructed = errors.New(
	"TransitionStatusCommand must be created via NewTransitionStatusCommand constructor",
)

// TransitionStatusCommand asks to move a shipment along one edge of the status graph.
type TransitionStatusCommand struct { //nolint:recvcheck //using for validation
	number shipment.TrackingNumber
	actor  kernel.Actor
	status shipment.Status

	guard guard.ConstructorGuard
}

// NewTransitionStatusCommand creates a validated status change request.
// Returns an error joining every invalid field.
func NewTransitionStatusCommand(
	number shipment.TrackingNumber,
	actor kernel.Actor,
	status shipment.Status,
) (TransitionStatusCommand, error) {
	if err := errors.Join(number.Validate(), actor.ID.Validate(), status.Validate()); err != nil {
		return TransitionStatusCommand{}, err
	}

	return TransitionStatusCommand{
		number: number,
		actor:  actor,
		status: status,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was built by NewTransitionStatusCommand.
func (c TransitionStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionStatusCommandIsNotConstructed)
}

func (c TransitionStatusCommand) TrackingNumber() shipment.TrackingNumber { return c.number }
func (c TransitionStatusCommand) Actor() kernel.Actor                     { return c.actor }
func (c TransitionStatusCommand) Status() shipment.Status                 { return c.status }
