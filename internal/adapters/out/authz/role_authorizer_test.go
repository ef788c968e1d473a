package authz_test

import (
	"testing"
	"time"

	"tracking/internal/adapters/out/authz"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShipment(t *testing.T, creator kernel.UUID) *shipment.Shipment {
	t.Helper()
	a, err := kernel.NewCoordinate(12.9716, 77.5946)
	require.NoError(t, err)
	b, err := kernel.NewCoordinate(13.0827, 80.2707)
	require.NoError(t, err)
	pickup, err := kernel.NewAddress("Bengaluru", a)
	require.NoError(t, err)
	delivery, err := kernel.NewAddress("Chennai", b)
	require.NoError(t, err)

	now := time.Now()
	s, err := shipment.NewShipment(shipment.NewTrackingNumber(now), creator, pickup, delivery,
		shipment.Options{}, eta.Fallback(290, eta.VehicleCar), now)
	require.NoError(t, err)
	return s
}

func TestRoleAuthorizer_CanTransition(t *testing.T) {
	auth := authz.NewRoleAuthorizer()
	creator := kernel.NewUUID()
	driver := kernel.NewUUID()

	pending := newShipment(t, creator)
	assigned := newShipment(t, creator)
	_, err := assigned.AssignAgent(driver, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  kernel.Actor
		target *shipment.Shipment
		next   shipment.Status
		want   bool
	}{
		{"admin cancels", kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}, assigned, shipment.Cancelled, true},
		{"admin picks up", kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}, assigned, shipment.PickedUp, true},
		{"assigned driver picks up", kernel.Actor{ID: driver, Role: kernel.RoleDriver}, assigned, shipment.PickedUp, true},
		{"assigned driver cannot cancel", kernel.Actor{ID: driver, Role: kernel.RoleDriver}, assigned, shipment.Cancelled, false},
		{"other driver", kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleDriver}, assigned, shipment.PickedUp, false},
		{"driver on unassigned", kernel.Actor{ID: driver, Role: kernel.RoleDriver}, pending, shipment.PickedUp, false},
		{"creator cancels pending", kernel.Actor{ID: creator, Role: kernel.RoleUser}, pending, shipment.Cancelled, true},
		{"creator cannot cancel assigned", kernel.Actor{ID: creator, Role: kernel.RoleUser}, assigned, shipment.Cancelled, false},
		{"creator cannot deliver", kernel.Actor{ID: creator, Role: kernel.RoleUser}, pending, shipment.Delivered, false},
		{"stranger cannot cancel", kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleUser}, pending, shipment.Cancelled, false},
		{"unknown role", kernel.Actor{ID: creator, Role: "root"}, pending, shipment.Cancelled, false},
		{"nil shipment", kernel.Actor{ID: creator, Role: kernel.RoleAdmin}, nil, shipment.Cancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.CanTransition(tt.actor, tt.target, tt.next))
		})
	}
}

func TestRoleAuthorizer_CanUpdateLocation(t *testing.T) {
	auth := authz.NewRoleAuthorizer()
	driver := kernel.NewUUID()
	s := newShipment(t, kernel.NewUUID())
	_, err := s.AssignAgent(driver, time.Now())
	require.NoError(t, err)

	assert.True(t, auth.CanUpdateLocation(kernel.Actor{ID: driver, Role: kernel.RoleDriver}, s))
	assert.True(t, auth.CanUpdateLocation(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}, s))
	assert.False(t, auth.CanUpdateLocation(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleDriver}, s))
	assert.False(t, auth.CanUpdateLocation(kernel.Actor{ID: s.CreatorID(), Role: kernel.RoleUser}, s))
}

func TestRoleAuthorizer_CanAssign(t *testing.T) {
	auth := authz.NewRoleAuthorizer()
	driver := kernel.NewUUID()

	assert.True(t, auth.CanAssign(kernel.Actor{ID: driver, Role: kernel.RoleDriver}, driver))
	assert.False(t, auth.CanAssign(kernel.Actor{ID: driver, Role: kernel.RoleDriver}, kernel.NewUUID()))
	assert.True(t, auth.CanAssign(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}, driver))
	assert.False(t, auth.CanAssign(kernel.Actor{ID: driver, Role: kernel.RoleUser}, driver))
}
