// Package guard lets value objects and commands detect that they were built as a
// zero value instead of through their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in structs that must only be obtained from a constructor.
// The zero value reports itself as not constructed.
//
// Example:
//
//	type TrackingQuery struct {
//	    number shipment.TrackingNumber
//	    guard  guard.ConstructorGuard
//	}
//
//	func NewTrackingQuery(n shipment.TrackingNumber) TrackingQuery {
//	    return TrackingQuery{number: n, guard: guard.NewConstructorGuard()}
//	}
//
//	func (q TrackingQuery) Validate() error {
//	    return q.guard.Validate(ErrTrackingQueryIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
