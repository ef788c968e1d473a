package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/metrics"
)

const (
	DefaultMailboxSize = 64
	DefaultSendTimeout = 5 * time.Second
)

var (
	// ErrDeliveryFailed is matched by every DeliveryFailure.
	ErrDeliveryFailed = errors.New("event delivery failed")

	// ErrMailboxFull means a subscriber fell too far behind and was dropped.
	ErrMailboxFull = errors.New("subscriber mailbox is full")
)

// DeliveryFailure describes a subscriber that could not be served.
// It is logged and counted; it never reaches the operation that produced the events.
type DeliveryFailure struct {
	ConnectionID string
	Tracking     shipment.TrackingNumber
	Cause        error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("%s: connection %s, tracking number %s: %v", ErrDeliveryFailed, e.ConnectionID, e.Tracking, e.Cause)
}

func (e *DeliveryFailure) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Cause}
}

// DeliveryRecorder counts delivery outcomes.
type DeliveryRecorder interface {
	RecordDelivery(outcome string)
}

// BroadcasterConfig tunes the per-connection mailboxes.
// Zero values select DefaultMailboxSize and DefaultSendTimeout.
type BroadcasterConfig struct {
	// MailboxSize is the number of pending batches per connection before it is dropped.
	MailboxSize int
	// SendTimeout bounds one Send call.
	SendTimeout time.Duration
}

type envelope struct {
	tracking shipment.TrackingNumber
	events   []shipment.Event
}

type mailbox struct {
	conn  ports.Connection
	queue chan envelope
	done  chan struct{}
}

// Broadcaster delivers event batches to the subscribers of a tracking number.
//
// Each connection gets a bounded FIFO mailbox and one writer goroutine. Publish
// never blocks on a connection: a full mailbox or a failed Send drops that
// connection from the registry, and a connection dropped while a batch is in
// flight is skipped. Batches published for the same tracking number are
// enqueued in call order.
type Broadcaster struct {
	registry *Registry
	config   BroadcasterConfig
	recorder DeliveryRecorder
	logger   *slog.Logger

	mu        sync.Mutex
	mailboxes map[string]*mailbox
	stopped   bool
	wg        sync.WaitGroup
}

// NewBroadcaster creates a broadcaster over registry. logger and recorder may be nil.
//
// Example:
//
//	b := NewBroadcaster(NewRegistry(), BroadcasterConfig{MailboxSize: 128}, logger, metrics)
//	defer b.Stop()
//	b.Join(conn, number)
//	b.Publish(ctx, number, event)
func NewBroadcaster(
	registry *Registry,
	config BroadcasterConfig,
	logger *slog.Logger,
	recorder DeliveryRecorder,
) *Broadcaster {
	if config.MailboxSize <= 0 {
		config.MailboxSize = DefaultMailboxSize
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Broadcaster{
		registry:  registry,
		config:    config,
		recorder:  recorder,
		logger:    logger.With("component", "Broadcaster"),
		mailboxes: make(map[string]*mailbox),
	}
}

// Registry returns the subscription index the broadcaster reads from.
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Join subscribes conn to number.
func (b *Broadcaster) Join(conn ports.Connection, number shipment.TrackingNumber) bool {
	return b.registry.Join(conn, number)
}

// Leave unsubscribes conn from number.
func (b *Broadcaster) Leave(conn ports.Connection, number shipment.TrackingNumber) {
	b.registry.Leave(conn, number)
}

// Publish enqueues events as one batch for every current subscriber of number.
// It implements ports.EventPublisher and never returns an error.
func (b *Broadcaster) Publish(ctx context.Context, number shipment.TrackingNumber, events ...shipment.Event) {
	if len(events) == 0 {
		return
	}
	subscribers := b.registry.SubscribersOf(number)
	if len(subscribers) == 0 {
		return
	}

	batch := envelope{tracking: number, events: append([]shipment.Event(nil), events...)}
	var overflowed []ports.Connection

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	for _, conn := range subscribers {
		box, ok := b.mailboxes[conn.ID()]
		if !ok {
			// dropped between the snapshot and now
			if !b.registry.HasConnection(conn.ID()) {
				continue
			}
			box = b.startLocked(conn)
		}

		select {
		case box.queue <- batch:
		default:
			overflowed = append(overflowed, conn)
		}
	}
	b.mu.Unlock()

	for _, conn := range overflowed {
		b.fail(ctx, conn, &DeliveryFailure{ConnectionID: conn.ID(), Tracking: number, Cause: ErrMailboxFull})
	}
}

// DropConnection removes every subscription of conn and stops its writer.
// Batches still queued for it are discarded. Safe to call more than once.
func (b *Broadcaster) DropConnection(conn ports.Connection) {
	b.registry.DropConnection(conn.ID())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked(conn.ID(), nil)
}

// Stop drops every mailbox and waits for the writers to exit.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	b.stopped = true
	for id := range b.mailboxes {
		b.closeLocked(id, nil)
	}
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Broadcaster) startLocked(conn ports.Connection) *mailbox {
	box := &mailbox{
		conn:  conn,
		queue: make(chan envelope, b.config.MailboxSize),
		done:  make(chan struct{}),
	}
	b.mailboxes[conn.ID()] = box

	b.wg.Add(1)
	go b.drain(box)

	return box
}

// closeLocked removes the mailbox of id. When expected is set, only that exact
// mailbox is removed, so a late failure never closes a successor.
func (b *Broadcaster) closeLocked(id string, expected *mailbox) {
	box, ok := b.mailboxes[id]
	if !ok || (expected != nil && box != expected) {
		return
	}
	delete(b.mailboxes, id)
	close(box.done)
	close(box.queue)
}

func (b *Broadcaster) drain(box *mailbox) {
	defer b.wg.Done()

	for batch := range box.queue {
		select {
		case <-box.done:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.config.SendTimeout)
		err := box.conn.Send(ctx, batch.events)
		cancel()

		if err != nil {
			b.failMailbox(context.Background(), box, &DeliveryFailure{ConnectionID: box.conn.ID(), Tracking: batch.tracking, Cause: err})
			return
		}
		b.record(metrics.DeliveryDelivered)
	}
}

func (b *Broadcaster) fail(ctx context.Context, conn ports.Connection, failure *DeliveryFailure) {
	b.mu.Lock()
	box := b.mailboxes[conn.ID()]
	b.mu.Unlock()

	if box == nil {
		b.registry.DropConnection(conn.ID())
		return
	}
	b.failMailbox(ctx, box, failure)
}

func (b *Broadcaster) failMailbox(ctx context.Context, box *mailbox, failure *DeliveryFailure) {
	b.logger.WarnContext(ctx, "dropping subscriber",
		"connection", failure.ConnectionID,
		"trackingNumber", failure.Tracking,
		"error", failure)
	b.record(metrics.DeliveryDropped)

	b.registry.DropConnection(box.conn.ID())

	b.mu.Lock()
	b.closeLocked(box.conn.ID(), box)
	b.mu.Unlock()

	if closer, ok := box.conn.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			b.logger.DebugContext(ctx, "closing dropped connection", "connection", failure.ConnectionID, "error", err)
		}
	}
}

func (b *Broadcaster) record(outcome string) {
	if b.recorder != nil {
		b.recorder.RecordDelivery(outcome)
	}
}
