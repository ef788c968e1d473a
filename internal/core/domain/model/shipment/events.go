package shipment

import (
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
)

// EventType is the public name of a change, also used as the websocket message type.
type EventType string

const (
	EventStatusChanged   EventType = "status_updated"
	EventLocationUpdated EventType = "location_updated"
	EventETAChanged      EventType = "eta_updated"
	EventAgentAssigned   EventType = "agent_assigned"
)

// Event is the "what changed" vocabulary handed to subscribers of a tracking number.
type Event interface {
	TrackingNumber() TrackingNumber
	Type() EventType
	OccurredAt() time.Time
}

// StatusChangedEvent is produced by every successful status transition.
type StatusChangedEvent struct {
	Tracking  TrackingNumber
	OldStatus Status
	NewStatus Status
	Timestamp time.Time
}

func (e StatusChangedEvent) TrackingNumber() TrackingNumber { return e.Tracking }
func (e StatusChangedEvent) Type() EventType                { return EventStatusChanged }
func (e StatusChangedEvent) OccurredAt() time.Time          { return e.Timestamp }

// LocationUpdatedEvent carries the agent's latest reported position.
type LocationUpdatedEvent struct {
	Tracking  TrackingNumber
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

func (e LocationUpdatedEvent) TrackingNumber() TrackingNumber { return e.Tracking }
func (e LocationUpdatedEvent) Type() EventType                { return EventLocationUpdated }
func (e LocationUpdatedEvent) OccurredAt() time.Time          { return e.Timestamp }

// ETAChangedEvent carries a recomputed arrival estimate and where it came from.
type ETAChangedEvent struct {
	Tracking   TrackingNumber
	Minutes    float64
	Confidence eta.Confidence
	Range      eta.Range
	Timestamp  time.Time
}

func (e ETAChangedEvent) TrackingNumber() TrackingNumber { return e.Tracking }
func (e ETAChangedEvent) Type() EventType                { return EventETAChanged }
func (e ETAChangedEvent) OccurredAt() time.Time          { return e.Timestamp }

// AssignmentEvent is produced when an agent takes a pending shipment.
// The shipment is in Assigned status from that moment on.
type AssignmentEvent struct {
	Tracking  TrackingNumber
	AgentID   kernel.UUID
	Timestamp time.Time
}

func (e AssignmentEvent) TrackingNumber() TrackingNumber { return e.Tracking }
func (e AssignmentEvent) Type() EventType                { return EventAgentAssigned }
func (e AssignmentEvent) OccurredAt() time.Time          { return e.Timestamp }
