package commands_test

import (
	"testing"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionStatusCommand(t *testing.T) {
	actor := adminActor()

	cmd, err := commands.NewTransitionStatusCommand("TRKM4X2Q9ZAB12C", actor, shipment.InTransit)

	require.NoError(t, err)
	assert.Equal(t, shipment.TrackingNumber("TRKM4X2Q9ZAB12C"), cmd.TrackingNumber())
	assert.Equal(t, actor, cmd.Actor())
	assert.Equal(t, shipment.InTransit, cmd.Status())
}

func TestNewTransitionStatusCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		number shipment.TrackingNumber
		actor  kernel.Actor
		status shipment.Status
		want   error
	}{
		{"empty number", "", adminActor(), shipment.Delivered, errs.ErrValueIsRequired},
		{"malformed number", "ABC", adminActor(), shipment.Delivered, errs.ErrValueIsInvalid},
		{"anonymous actor", "TRKM4X2Q9ZAB12C", kernel.Actor{Role: kernel.RoleAdmin}, shipment.Delivered, kernel.ErrUUIDIsNotConstructed},
		{"unknown status", "TRKM4X2Q9ZAB12C", adminActor(), shipment.Unknown, errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.NewTransitionStatusCommand(tt.number, tt.actor, tt.status)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
