package ports

import (
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
)

// Authorizer answers yes/no capability checks asked before a lifecycle operation.
type Authorizer interface {
	CanTransition(actor kernel.Actor, s *shipment.Shipment, next shipment.Status) bool
	CanUpdateLocation(actor kernel.Actor, s *shipment.Shipment) bool
	CanAssign(actor kernel.Actor, agentID kernel.UUID) bool
}
