package commands_test

import (
	"errors"
	"testing"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateCommand(t *testing.T) commands.CreateShipmentCommand {
	t.Helper()
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), delhi, noida,
		shipment.Options{Vehicle: eta.VehicleVan, Notes: "leave at reception"})
	require.NoError(t, err)
	return cmd
}

func TestCreateShipmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateCommand(t)
	baseline := eta.Estimate{Minutes: 34.2, Confidence: eta.ConfidenceMedium, Range: eta.Range{Lower: 30, Upper: 39}}

	predictor := new(MockPredictor)
	predictor.On("Initial", ctx, mock.MatchedBy(func(req eta.Request) bool {
		return req.DistanceKm > 15 && req.DistanceKm < 25 && req.Vehicle == eta.VehicleVan
	})).Return(baseline).Once()

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ShipmentRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	effects := &journal{}
	handler := commands.NewCreateShipmentCommandHandler(factory, predictor, effects, discardLogger())
	created, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NoError(t, created.TrackingNumber().Validate())
	assert.Equal(t, shipment.Pending, created.Status())
	assert.InDelta(t, 34.2, created.EstimatedMinutes(), 1e-9)
	assert.InDelta(t, 34.2, created.CurrentETAMinutes(), 1e-9)
	assert.Equal(t, eta.ConfidenceMedium, created.Confidence())
	assert.Equal(t, "leave at reception", created.Notes())
	assert.Equal(t, cmd.CreatorID(), created.CreatorID())

	assert.Equal(t, []string{"invalidate-prefix analytics:"}, effects.Entries())
	assert.Empty(t, effects.Batches(), "creation has no subscribers to notify")

	predictor.AssertExpectations(t)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateShipmentCommandHandler_Handle_FallbackEstimateStillCreates(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateCommand(t)

	predictor := new(MockPredictor)
	predictor.On("Initial", ctx, mock.Anything).Return(eta.Fallback(19.8, eta.VehicleVan)).Once()

	repo := new(MockShipmentRepository)
	repo.On("Add", ctx, mock.Anything).Return(nil).Once()
	uow := new(MockShipmentUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewCreateShipmentCommandHandler(factory, predictor, &journal{}, discardLogger())
	created, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, eta.ConfidenceFallback, created.Confidence())
	assert.InDelta(t, 25.92, created.EstimatedMinutes(), 1e-9)
}

func TestCreateShipmentCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	factory := new(MockShipmentUoWFactory)
	predictor := new(MockPredictor)

	handler := commands.NewCreateShipmentCommandHandler(factory, predictor, &journal{}, discardLogger())
	_, err := handler.Handle(ctx, commands.CreateShipmentCommand{})

	require.ErrorIs(t, err, commands.ErrCreateShipmentCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
	predictor.AssertNotCalled(t, "Initial", mock.Anything, mock.Anything)
}

func TestCreateShipmentCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	predictor := new(MockPredictor)
	predictor.On("Initial", ctx, mock.Anything).Return(eta.Estimate{Minutes: 1, Confidence: eta.ConfidenceHigh})

	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	effects := &journal{}
	handler := commands.NewCreateShipmentCommandHandler(factory, predictor, effects, discardLogger())
	_, err := handler.Handle(ctx, newCreateCommand(t))

	require.EqualError(t, err, "begin error")
	assert.Empty(t, effects.Entries())
}

func TestCreateShipmentCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	predictor := new(MockPredictor)
	predictor.On("Initial", ctx, mock.Anything).Return(eta.Estimate{Minutes: 1, Confidence: eta.ConfidenceHigh})

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ShipmentRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.Anything).Return(errors.New("duplicate key")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	effects := &journal{}
	handler := commands.NewCreateShipmentCommandHandler(factory, predictor, effects, discardLogger())
	_, err := handler.Handle(ctx, newCreateCommand(t))

	require.EqualError(t, err, "duplicate key")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Empty(t, effects.Entries(), "nothing was stored, nothing to invalidate")
}
