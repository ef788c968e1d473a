package realtime

import "tracking/internal/core/domain/model/shipment"

// TokensOf returns the tracking numbers connID is subscribed to.
func (r *Registry) TokensOf(connID string) []shipment.TrackingNumber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.connections[connID]
	if !ok {
		return nil
	}
	out := make([]shipment.TrackingNumber, 0, len(entry.tokens))
	for number := range entry.tokens {
		out = append(out, number)
	}
	return out
}
