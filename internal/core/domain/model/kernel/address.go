package kernel

import (
	"errors"
	"fmt"
	"strings"

	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var (
	// ErrInvalidAddress is matched by every InvalidAddressError.
	ErrInvalidAddress = errors.New("invalid address")

	ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
		"address must be created via NewAddress or ParseAddress constructors")
)

// InvalidAddressError is returned when an address has no text, no coordinate,
// or a coordinate outside of the valid range.
type InvalidAddressError struct {
	Field string
	Cause error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvalidAddress, e.Field, e.Cause)
}

func (e *InvalidAddressError) Unwrap() []error {
	return []error{ErrInvalidAddress, e.Cause}
}

// Address is a human readable place together with its coordinate.
type Address struct {
	text       string
	coordinate Coordinate
	guard      guard.ConstructorGuard
}

// NewAddress builds an address from already validated parts. A zero coordinate is
// treated as absent.
func NewAddress(text string, coordinate Coordinate) (Address, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Address{}, &InvalidAddressError{Field: "address", Cause: errs.NewValueIsRequiredError("address")}
	}

	if err := coordinate.Validate(); err != nil {
		return Address{}, &InvalidAddressError{Field: "coordinate", Cause: err}
	}

	return Address{text: text, coordinate: coordinate, guard: guard.NewConstructorGuard()}, nil
}

// ParseAddress builds an address from raw input where either coordinate part may be missing.
func ParseAddress(text string, lat, lng *float64) (Address, error) {
	if lat == nil || lng == nil {
		return Address{}, &InvalidAddressError{
			Field: "coordinate",
			Cause: errs.NewValueIsRequiredError("lat/lng"),
		}
	}

	c, err := NewCoordinate(*lat, *lng)
	if err != nil {
		return Address{}, &InvalidAddressError{Field: "coordinate", Cause: err}
	}

	return NewAddress(text, c)
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Text returns the human readable address.
func (a Address) Text() string {
	return a.text
}

// Coordinate returns the geographic position of the address.
func (a Address) Coordinate() Coordinate {
	return a.coordinate
}

func (a Address) String() string {
	return fmt.Sprintf("%s %s", a.text, a.coordinate)
}
