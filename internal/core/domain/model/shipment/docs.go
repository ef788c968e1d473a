// Package shipment provides the Shipment aggregate: the lifecycle state machine,
// lifecycle timestamps, the current ETA with its confidence, and the typed events
// describing every change.
//
// Key business rules:
//   - status follows pending -> assigned -> picked_up -> in_transit -> delivered,
//     with cancelled reachable from every non-terminal state
//   - delivered and cancelled are terminal
//   - an agent is assigned only from pending, together with the move to assigned
//   - pickup and delivery timestamps are stamped once, on first entry
package shipment
