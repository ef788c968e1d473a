package kernel

import (
	"fmt"
	"strings"

	"tracking/internal/pkg/errs"
)

// Role is the capability group of an authenticated caller.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
	RoleUser   Role = "user"
)

// ParseRole is case-insensitive and rejects unknown roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleDriver, RoleUser:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// Actor is the caller of a lifecycle operation as resolved by the transport layer.
type Actor struct {
	ID   UUID
	Role Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}
