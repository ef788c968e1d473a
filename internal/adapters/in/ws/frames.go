package ws

import (
	"fmt"
	"time"

	"tracking/internal/core/domain/model/shipment"
)

const (
	ActionJoin  = "join"
	ActionLeave = "leave"

	FrameJoined = "joined"
	FrameLeft   = "left"
	FrameError  = "error"
)

// ClientFrame is a subscription request sent by the client.
type ClientFrame struct {
	Action         string `json:"action"`
	TrackingNumber string `json:"trackingNumber"`
}

// ServerFrame is every message written to the client. Event frames carry the
// event type and its payload; acknowledgements carry the tracking number only.
type ServerFrame struct {
	Type           string     `json:"type"`
	TrackingNumber string     `json:"trackingNumber,omitempty"`
	Payload        any        `json:"payload,omitempty"`
	Message        string     `json:"message,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

type statusPayload struct {
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type etaPayload struct {
	Minutes    float64 `json:"minutes"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence string  `json:"confidence"`
}

type assignmentPayload struct {
	AgentID string `json:"agentId"`
	Status  string `json:"status"`
}

func eventFrame(event shipment.Event) (ServerFrame, error) {
	at := event.OccurredAt().UTC()
	frame := ServerFrame{
		Type:           string(event.Type()),
		TrackingNumber: event.TrackingNumber().String(),
		Timestamp:      &at,
	}

	switch e := event.(type) {
	case shipment.StatusChangedEvent:
		frame.Payload = statusPayload{OldStatus: e.OldStatus.String(), NewStatus: e.NewStatus.String()}
	case shipment.LocationUpdatedEvent:
		frame.Payload = locationPayload{Lat: e.Lat, Lng: e.Lng}
	case shipment.ETAChangedEvent:
		frame.Payload = etaPayload{
			Minutes:    e.Minutes,
			Lower:      e.Range.Lower,
			Upper:      e.Range.Upper,
			Confidence: e.Confidence.String(),
		}
	case shipment.AssignmentEvent:
		frame.Payload = assignmentPayload{AgentID: e.AgentID.String(), Status: shipment.Assigned.String()}
	default:
		return ServerFrame{}, fmt.Errorf("unsupported event %T", event)
	}

	return frame, nil
}
