package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand reports the agent's current position for a shipment.
// Out of range coordinates are rejected by the constructor with kernel.InvalidCoordinateError.
type UpdateLocationCommand struct { //nolint:recvcheck //using for validation
	number   shipment.TrackingNumber
	actor    kernel.Actor
	location kernel.Coordinate

	guard guard.ConstructorGuard
}

// NewUpdateLocationCommand creates a validated location report.
// Coordinates outside [-90,90]x[-180,180] fail with kernel.ErrInvalidCoordinate.
func NewUpdateLocationCommand(
	number shipment.TrackingNumber,
	actor kernel.Actor,
	lat, lng float64,
) (UpdateLocationCommand, error) {
	location, err := kernel.NewCoordinate(lat, lng)
	if err = errors.Join(number.Validate(), actor.ID.Validate(), err); err != nil {
		return UpdateLocationCommand{}, err
	}

	return UpdateLocationCommand{
		number:   number,
		actor:    actor,
		location: location,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was built by NewUpdateLocationCommand.
func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

func (c UpdateLocationCommand) TrackingNumber() shipment.TrackingNumber { return c.number }
func (c UpdateLocationCommand) Actor() kernel.Actor                     { return c.actor }
func (c UpdateLocationCommand) Location() kernel.Coordinate             { return c.location }
