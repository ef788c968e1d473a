package commands

import (
	"errors"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentCommand represents a request to register a new shipment.
//
// Example:
//
//	pickup, _ := kernel.ParseAddress("Warehouse 4, Delhi", &lat1, &lng1)
//	delivery, _ := kernel.ParseAddress("Sector 18, Noida", &lat2, &lng2)
//	cmd, err := NewCreateShipmentCommand(creatorID, pickup, delivery,
//	    shipment.Options{Vehicle: eta.VehicleVan})
//	if err != nil {
//	    return fmt.Errorf("invalid shipment data: %w", err)
//	}
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	creatorID kernel.UUID
	pickup    kernel.Address
	delivery  kernel.Address
	options   shipment.Options

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand validates the creator and both addresses.
// Unknown vehicle, weather and route values fall back to Car, Clear and A.
func NewCreateShipmentCommand(
	creatorID kernel.UUID,
	pickup kernel.Address,
	delivery kernel.Address,
	options shipment.Options,
) (CreateShipmentCommand, error) {
	options.Vehicle = eta.ParseVehicleType(string(options.Vehicle))
	options.Weather = eta.ParseWeather(string(options.Weather))
	options.Route = eta.ParseRoute(string(options.Route))

	cmd := CreateShipmentCommand{
		options: options,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCreator(creatorID),
		cmd.setAddresses(pickup, delivery),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was built by NewCreateShipmentCommand.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

func (c CreateShipmentCommand) CreatorID() kernel.UUID    { return c.creatorID }
func (c CreateShipmentCommand) Pickup() kernel.Address    { return c.pickup }
func (c CreateShipmentCommand) Delivery() kernel.Address  { return c.delivery }
func (c CreateShipmentCommand) Options() shipment.Options { return c.options }

func (c *CreateShipmentCommand) setCreator(creatorID kernel.UUID) error {
	if err := creatorID.Validate(); err != nil {
		return err
	}
	c.creatorID = creatorID
	return nil
}

func (c *CreateShipmentCommand) setAddresses(pickup, delivery kernel.Address) error {
	var problems []error
	if err := pickup.Validate(); err != nil {
		problems = append(problems, &kernel.InvalidAddressError{Field: "pickup", Cause: err})
	}
	if err := delivery.Validate(); err != nil {
		problems = append(problems, &kernel.InvalidAddressError{Field: "delivery", Cause: err})
	}
	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	c.pickup = pickup
	c.delivery = delivery
	return nil
}
