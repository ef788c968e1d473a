package shipmentrepo_test

import (
	"context"
	"testing"
	"time"

	"tracking/internal/adapters/out/postgres/shipmentrepo"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(number shipment.TrackingNumber, aggregate any) {
	m.Called(number, aggregate)
}

// ShipmentRepositoryIntegrationTestSuite verifies shipment persistence against a real PostgreSQL.
type ShipmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *shipmentrepo.GormShipmentRepository
	tracker    *MockAggregateTracker
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&shipmentrepo.ShipmentDTO{}))
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE shipments").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = shipmentrepo.NewGormShipmentRepository(suite.db, suite.tracker)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAdd_ValidShipment_Success() {
	ctx := context.Background()
	s := suite.newShipment(time.Now())

	suite.tracker.On("TrackAggregate", s.TrackingNumber(), s).Once()

	suite.Require().NoError(suite.repository.Add(ctx, s))
	suite.assertShipmentCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAdd_DuplicateTrackingNumber_Fails() {
	ctx := context.Background()
	s := suite.newShipment(time.Now())
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	suite.Require().NoError(suite.repository.Add(ctx, s))
	suite.Require().Error(suite.repository.Add(ctx, s))
	suite.assertShipmentCount(1)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAdd_NotConstructed_Rejected() {
	err := suite.repository.Add(context.Background(), &shipment.Shipment{})

	suite.Require().ErrorIs(err, shipment.ErrShipmentIsNotConstructed)
	suite.assertShipmentCount(0)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGet_RoundTripsFullLifecycle() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	s := suite.newShipment(now)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, s))

	agent := kernel.NewUUID()
	loaded := suite.reload(s.TrackingNumber())
	_, err := loaded.AssignAgent(agent, now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	loaded = suite.reload(s.TrackingNumber())
	_, err = loaded.TransitionTo(shipment.PickedUp, now.Add(2*time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	loaded = suite.reload(s.TrackingNumber())
	position, err := kernel.NewCoordinate(28.58, 77.25)
	suite.Require().NoError(err)
	estimate := eta.Estimate{Minutes: 7.5, Confidence: eta.ConfidenceMedium, Range: eta.Range{Lower: 6, Upper: 9}}
	_, _, err = loaded.UpdateLocation(position, estimate, now.Add(3*time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	got := suite.reload(s.TrackingNumber())
	suite.Equal(shipment.PickedUp, got.Status())
	suite.Require().NotNil(got.AgentID())
	suite.True(got.AgentID().IsEqual(agent))
	suite.Require().NotNil(got.PickedUpAt())
	suite.True(got.PickedUpAt().Equal(now.Add(2 * time.Minute)))
	suite.Nil(got.DeliveredAt())
	suite.Require().NotNil(got.CurrentLocation())
	suite.InDelta(28.58, got.CurrentLocation().Lat(), 1e-9)
	suite.InDelta(77.25, got.CurrentLocation().Lng(), 1e-9)
	suite.InDelta(7.5, got.CurrentETAMinutes(), 1e-9)
	suite.Equal(eta.ConfidenceMedium, got.Confidence())
	suite.Equal(eta.Range{Lower: 6, Upper: 9}, got.ETARange())
	suite.InDelta(s.EstimatedMinutes(), got.EstimatedMinutes(), 1e-9)
	suite.Equal(s.Pickup().Text(), got.Pickup().Text())
	suite.Equal(eta.VehicleVan, got.Vehicle())
	suite.Equal("fragile", got.Notes())
	suite.Equal(3, got.Version())
	suite.NoError(got.CheckInvariants())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGet_NonExistent_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), shipment.TrackingNumber("TRKNOTHERE00"))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGet_MalformedNumber_Rejected() {
	_, err := suite.repository.Get(context.Background(), shipment.TrackingNumber("nope"))

	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsVersionError() {
	ctx := context.Background()
	now := time.Now()
	s := suite.newShipment(now)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, s))

	first := suite.reload(s.TrackingNumber())
	second := suite.reload(s.TrackingNumber())

	_, err := first.AssignAgent(kernel.NewUUID(), now)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, first))

	_, err = second.TransitionTo(shipment.Cancelled, now)
	suite.Require().NoError(err)
	err = suite.repository.Update(ctx, second)

	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)
	suite.Equal(shipment.Assigned, suite.reload(s.TrackingNumber()).Status())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_NonExistent_ReturnsNotFoundError() {
	s := suite.newShipment(time.Now())

	err := suite.repository.Update(context.Background(), s)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) newShipment(now time.Time) *shipment.Shipment {
	pickupPoint, err := kernel.NewCoordinate(28.6139, 77.2090)
	suite.Require().NoError(err)
	deliveryPoint, err := kernel.NewCoordinate(28.5355, 77.3910)
	suite.Require().NoError(err)
	pickup, err := kernel.NewAddress("Connaught Place, Delhi", pickupPoint)
	suite.Require().NoError(err)
	delivery, err := kernel.NewAddress("Sector 18, Noida", deliveryPoint)
	suite.Require().NoError(err)

	baseline := eta.Estimate{Minutes: 25, Confidence: eta.ConfidenceHigh, Range: eta.Range{Lower: 20, Upper: 30}}
	s, err := shipment.NewShipment(shipment.NewTrackingNumber(now), kernel.NewUUID(), pickup, delivery,
		shipment.Options{Vehicle: eta.VehicleVan, Notes: "fragile"}, baseline, now)
	suite.Require().NoError(err)
	return s
}

func (suite *ShipmentRepositoryIntegrationTestSuite) reload(number shipment.TrackingNumber) *shipment.Shipment {
	s, err := suite.repository.Get(context.Background(), number)
	suite.Require().NoError(err)
	return s
}

func (suite *ShipmentRepositoryIntegrationTestSuite) assertShipmentCount(expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(&shipmentrepo.ShipmentDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestShipmentRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ShipmentRepositoryIntegrationTestSuite))
}
