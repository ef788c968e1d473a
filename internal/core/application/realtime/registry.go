package realtime

import (
	"sync"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
)

// Stats is a point in time view of the registry size.
type Stats struct {
	Tokens        int
	Connections   int
	Subscriptions int
}

type connectionEntry struct {
	conn   ports.Connection
	tokens map[shipment.TrackingNumber]struct{}
}

// Registry tracks which connections watch which tracking numbers.
// Both directions of the index are updated under one lock, so readers never
// observe a pair present on one side only. Connections are keyed by ID().
type Registry struct {
	mu          sync.RWMutex
	byToken     map[shipment.TrackingNumber]map[string]ports.Connection
	connections map[string]*connectionEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byToken:     make(map[shipment.TrackingNumber]map[string]ports.Connection),
		connections: make(map[string]*connectionEntry),
	}
}

// Join subscribes conn to number. It is idempotent and reports whether the pair was added.
func (r *Registry) Join(conn ports.Connection, number shipment.TrackingNumber) bool {
	id := conn.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	subscribers, ok := r.byToken[number]
	if !ok {
		subscribers = make(map[string]ports.Connection)
		r.byToken[number] = subscribers
	}
	if _, exists := subscribers[id]; exists {
		return false
	}

	entry, ok := r.connections[id]
	if !ok {
		entry = &connectionEntry{conn: conn, tokens: make(map[shipment.TrackingNumber]struct{})}
		r.connections[id] = entry
	}

	subscribers[id] = conn
	entry.tokens[number] = struct{}{}
	return true
}

// Leave removes the pair if present.
func (r *Registry) Leave(conn ports.Connection, number shipment.TrackingNumber) {
	id := conn.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(id, number)
}

// DropConnection removes every subscription held by the connection with the
// given ID and returns the tracking numbers it was watching.
func (r *Registry) DropConnection(connID string) []shipment.TrackingNumber {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.connections[connID]
	if !ok {
		return nil
	}

	numbers := make([]shipment.TrackingNumber, 0, len(entry.tokens))
	for number := range entry.tokens {
		numbers = append(numbers, number)
	}
	for _, number := range numbers {
		r.removeLocked(connID, number)
	}
	return numbers
}

// SubscribersOf returns a snapshot of the connections watching number.
// The caller owns the returned slice.
func (r *Registry) SubscribersOf(number shipment.TrackingNumber) []ports.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subscribers := r.byToken[number]
	out := make([]ports.Connection, 0, len(subscribers))
	for _, conn := range subscribers {
		out = append(out, conn)
	}
	return out
}

// HasConnection reports whether connID holds at least one subscription.
func (r *Registry) HasConnection(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.connections[connID]
	return ok
}

// Stats counts distinct tokens, connections and subscription pairs.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Tokens: len(r.byToken), Connections: len(r.connections)}
	for _, subscribers := range r.byToken {
		stats.Subscriptions += len(subscribers)
	}
	return stats
}

func (r *Registry) removeLocked(connID string, number shipment.TrackingNumber) {
	if subscribers, ok := r.byToken[number]; ok {
		delete(subscribers, connID)
		if len(subscribers) == 0 {
			delete(r.byToken, number)
		}
	}

	if entry, ok := r.connections[connID]; ok {
		delete(entry.tokens, number)
		if len(entry.tokens) == 0 {
			delete(r.connections, connID)
		}
	}
}
