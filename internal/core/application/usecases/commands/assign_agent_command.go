package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/guard"
)

var ErrAssignAgentCommandIsNotConstructed = errors.New(
	"AssignAgentCommand must be created via NewAssignAgentCommand constructor",
)

// AssignAgentCommand asks to hand a pending shipment to a delivery agent.
type AssignAgentCommand struct { //nolint:recvcheck //using for validation
	number  shipment.TrackingNumber
	actor   kernel.Actor
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignAgentCommand creates a validated assignment request.
// Returns an error joining every invalid field.
func NewAssignAgentCommand(
	number shipment.TrackingNumber,
	actor kernel.Actor,
	agentID kernel.UUID,
) (AssignAgentCommand, error) {
	if err := errors.Join(number.Validate(), actor.ID.Validate(), agentID.Validate()); err != nil {
		return AssignAgentCommand{}, err
	}

	return AssignAgentCommand{
		number:  number,
		actor:   actor,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was built by NewAssignAgentCommand.
func (c AssignAgentCommand) Validate() error {
	return c.guard.Validate(ErrAssignAgentCommandIsNotConstructed)
}

func (c AssignAgentCommand) TrackingNumber() shipment.TrackingNumber { return c.number }
func (c AssignAgentCommand) Actor() kernel.Actor                     { return c.actor }
func (c AssignAgentCommand) AgentID() kernel.UUID                    { return c.agentID }
