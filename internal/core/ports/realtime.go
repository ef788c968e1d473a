package ports

import (
	"context"

	"tracking/internal/core/domain/model/shipment"
)

// Connection is a live subscriber transport (a websocket, a stream, a test channel).
type Connection interface {
	// ID is unique among the connections open at the same time.
	ID() string

	// Send writes one batch of events. A returned error marks the connection as
	// failed and it is dropped from every subscription.
	Send(ctx context.Context, events []shipment.Event) error
}

// EventPublisher hands the events of one lifecycle operation to the subscribers
// of a tracking number. It never fails the operation that produced the events.
type EventPublisher interface {
	Publish(ctx context.Context, number shipment.TrackingNumber, events ...shipment.Event)
}
