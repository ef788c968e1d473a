package commands_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, number shipment.TrackingNumber) (*shipment.Shipment, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

type MockShipmentUoW struct{ mock.Mock }

func (m *MockShipmentUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockPredictor struct{ mock.Mock }

func (m *MockPredictor) Initial(ctx context.Context, req eta.Request) eta.Estimate {
	args := m.Called(ctx, req)
	return args.Get(0).(eta.Estimate)
}

func (m *MockPredictor) Update(ctx context.Context, req eta.Request) eta.Estimate {
	args := m.Called(ctx, req)
	return args.Get(0).(eta.Estimate)
}

type MockAuthorizer struct{ mock.Mock }

func (m *MockAuthorizer) CanTransition(actor kernel.Actor, s *shipment.Shipment, next shipment.Status) bool {
	args := m.Called(actor, s, next)
	return args.Bool(0)
}

func (m *MockAuthorizer) CanUpdateLocation(actor kernel.Actor, s *shipment.Shipment) bool {
	args := m.Called(actor, s)
	return args.Bool(0)
}

func (m *MockAuthorizer) CanAssign(actor kernel.Actor, agentID kernel.UUID) bool {
	args := m.Called(actor, agentID)
	return args.Bool(0)
}

// journal records post-commit side effects in the order they happen.
type journal struct {
	mu      sync.Mutex
	entries []string
	batches [][]shipment.Event
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *journal) Batches() [][]shipment.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([][]shipment.Event(nil), j.batches...)
}

// Cache side of the journal.
func (j *journal) Get(context.Context, string) ([]byte, bool)          { return nil, false }
func (j *journal) Set(context.Context, string, []byte, time.Duration)  {}
func (j *journal) Invalidate(_ context.Context, key string)            { j.add("invalidate " + key) }
func (j *journal) InvalidateByPrefix(_ context.Context, prefix string) { j.add("invalidate-prefix " + prefix) }

// Publisher side of the journal.
func (j *journal) Publish(_ context.Context, number shipment.TrackingNumber, events ...shipment.Event) {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, string(e.Type()))
	}
	j.add("publish " + number.String() + " " + strings.Join(types, ","))

	j.mu.Lock()
	defer j.mu.Unlock()
	j.batches = append(j.batches, events)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	delhi = mustAddress("Connaught Place, Delhi", 28.6139, 77.2090)
	noida = mustAddress("Sector 18, Noida", 28.5355, 77.3910)
)

func mustAddress(text string, lat, lng float64) kernel.Address {
	c, err := kernel.NewCoordinate(lat, lng)
	if err != nil {
		panic(err)
	}
	a, err := kernel.NewAddress(text, c)
	if err != nil {
		panic(err)
	}
	return a
}

func newPendingShipment(t *testing.T, creator kernel.UUID) *shipment.Shipment {
	t.Helper()
	now := time.Now().UTC()
	s, err := shipment.NewShipment(shipment.NewTrackingNumber(now), creator, delhi, noida,
		shipment.Options{Vehicle: eta.VehicleVan}, eta.Estimate{
			Minutes:    25,
			Confidence: eta.ConfidenceHigh,
			Range:      eta.Range{Lower: 20, Upper: 30},
		}, now)
	require.NoError(t, err)
	return s
}

func newAssignedShipment(t *testing.T, agent kernel.UUID) *shipment.Shipment {
	t.Helper()
	s := newPendingShipment(t, kernel.NewUUID())
	_, err := s.AssignAgent(agent, time.Now().UTC())
	require.NoError(t, err)
	return s
}

func adminActor() kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
}

// TrackingShipmentUoW is a unit of work that also reports the shipments written in it.
type TrackingShipmentUoW struct {
	*MockShipmentUoW
	written []shipment.TrackingNumber
}

func (u *TrackingShipmentUoW) TrackedNumbers() []shipment.TrackingNumber {
	return u.written
}
