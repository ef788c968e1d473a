package realtime_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tracking/internal/core/domain/model/shipment"
)

const number = shipment.TrackingNumber("TRKM4X2Q9ZAB12C")

type fakeConn struct {
	id string

	mu       sync.Mutex
	received []shipment.Event
	sends    int

	sendErr error
	block   chan struct{}
	closed  atomic.Bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ctx context.Context, events []shipment.Event) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if c.sendErr != nil {
		return c.sendErr
	}
	c.received = append(c.received, events...)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *fakeConn) events() []shipment.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]shipment.Event(nil), c.received...)
}

func (c *fakeConn) sendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

func locationEvent(seq int) shipment.LocationUpdatedEvent {
	return shipment.LocationUpdatedEvent{
		Tracking:  number,
		Lat:       float64(seq),
		Lng:       0,
		Timestamp: time.Unix(int64(seq), 0),
	}
}
