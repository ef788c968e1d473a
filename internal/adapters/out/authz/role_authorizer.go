// Package authz decides which actor may run which lifecycle operation.
package authz

import (
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
)

// RoleAuthorizer implements ports.Authorizer from the actor's role and its relation
// to the shipment:
//   - admin may do everything
//   - driver may assign itself to a pending shipment, then report its position and
//     move the shipment it carries forward; it cannot cancel
//   - user may cancel a shipment it created while it is still pending
type RoleAuthorizer struct{}

// NewRoleAuthorizer returns the authorizer. It holds no state.
func NewRoleAuthorizer() RoleAuthorizer {
	return RoleAuthorizer{}
}

func (RoleAuthorizer) CanTransition(actor kernel.Actor, s *shipment.Shipment, next shipment.Status) bool {
	if s == nil {
		return false
	}
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleDriver:
		return next != shipment.Cancelled && s.IsAssignedTo(actor.ID)
	case kernel.RoleUser:
		return next == shipment.Cancelled &&
			s.Status() == shipment.Pending &&
			s.CreatorID().IsEqual(actor.ID)
	default:
		return false
	}
}

func (RoleAuthorizer) CanUpdateLocation(actor kernel.Actor, s *shipment.Shipment) bool {
	if s == nil {
		return false
	}
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleDriver:
		return s.IsAssignedTo(actor.ID)
	default:
		return false
	}
}

func (RoleAuthorizer) CanAssign(actor kernel.Actor, agentID kernel.UUID) bool {
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleDriver:
		return actor.ID.IsEqual(agentID)
	default:
		return false
	}
}
