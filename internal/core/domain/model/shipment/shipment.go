package shipment

import (
	"errors"
	"fmt"
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

var (
	// ErrShipmentIsNotConstructed is returned for a Shipment not built by NewShipment or Restore.
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or Restore")

	// ErrShipmentIsClosed is returned when a terminal shipment receives a location update.
	ErrShipmentIsClosed = errors.New("shipment is delivered or cancelled")

	// ErrAgentRequired is returned when Assigned is requested without going through AssignAgent.
	ErrAgentRequired = errors.New("an agent must be assigned through AssignAgent")
)

// Shipment is the aggregate root of the tracking domain. It owns the status
// machine, the lifecycle timestamps and the derived ETA and position.
//
// Invariants:
//   - the tracking number never changes
//   - status only follows the edges of Status
//   - pickedUpAt is set once, on entry to PickedUp, and is present for every later non-cancelled state
//   - deliveredAt is set once, on entry to Delivered, and only then
//   - an agent is present in Assigned and every later non-cancelled state, absent while Pending
//   - the current ETA is never negative and always carries a confidence label
type Shipment struct {
	trackingNumber TrackingNumber
	pickup         kernel.Address
	delivery       kernel.Address
	distanceKm     float64

	vehicle eta.VehicleType
	weather eta.Weather
	route   eta.Route

	status  Status
	agentID *kernel.UUID

	currentLocation   *kernel.Coordinate
	locationUpdatedAt *time.Time

	estimatedMinutes float64
	currentETA       float64
	etaRange         eta.Range
	confidence       eta.Confidence

	creatorID kernel.UUID
	notes     string

	createdAt   time.Time
	updatedAt   time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	version int

	isConstructed bool
}

// NewShipment creates a Pending shipment. The distance is computed from the
// two addresses and the baseline estimate becomes both the immutable
// estimated minutes and the first current ETA.
//
// Example:
//
//	number := shipment.NewTrackingNumber(now)
//	s, err := shipment.NewShipment(number, creator, pickup, delivery,
//	    shipment.Options{Vehicle: eta.VehicleVan}, baseline, now)
func NewShipment(
	number TrackingNumber,
	creatorID kernel.UUID,
	pickup kernel.Address,
	delivery kernel.Address,
	opts Options,
	baseline eta.Estimate,
	now time.Time,
) (*Shipment, error) {
	s := &Shipment{
		status:        Pending,
		vehicle:       opts.Vehicle,
		weather:       opts.Weather,
		route:         opts.Route,
		notes:         opts.Notes,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		s.setTrackingNumber(number),
		s.setCreator(creatorID),
		s.setAddresses(pickup, delivery),
		s.setEstimate(baseline),
	); err != nil {
		return nil, err
	}

	s.estimatedMinutes = baseline.Minutes
	return s, nil
}

// Options are the optional prediction inputs and free text of a new shipment.
type Options struct {
	Vehicle eta.VehicleType
	Weather eta.Weather
	Route   eta.Route
	Notes   string
}

// Distance is the great-circle distance in km between two addresses.
func Distance(pickup, delivery kernel.Address) (float64, error) {
	if err := errors.Join(pickup.Validate(), delivery.Validate()); err != nil {
		return 0, err
	}
	return pickup.Coordinate().DistanceTo(delivery.Coordinate())
}

// Validate ensures the shipment was built by NewShipment or Restore.
func (s *Shipment) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShipmentIsNotConstructed
	}
	return nil
}

// TrackingNumber returns the public token of the shipment.
func (s *Shipment) TrackingNumber() TrackingNumber {
	return s.trackingNumber
}

// Pickup returns the pickup address.
func (s *Shipment) Pickup() kernel.Address {
	return s.pickup
}

// Delivery returns the delivery address.
func (s *Shipment) Delivery() kernel.Address {
	return s.delivery
}

// DistanceKm returns the great-circle distance between pickup and delivery, in km.
func (s *Shipment) DistanceKm() float64 {
	return s.distanceKm
}

// Vehicle returns the vehicle type used for estimates.
func (s *Shipment) Vehicle() eta.VehicleType {
	return s.vehicle
}

// Weather returns the weather reported at creation.
func (s *Shipment) Weather() eta.Weather {
	return s.weather
}

// Route returns the route identifier passed to the predictor.
func (s *Shipment) Route() eta.Route {
	return s.route
}

// Status returns the current lifecycle status.
func (s *Shipment) Status() Status {
	return s.status
}

// EstimatedMinutes returns the baseline estimate computed at creation.
func (s *Shipment) EstimatedMinutes() float64 {
	return s.estimatedMinutes
}

// CurrentETAMinutes returns the latest estimate, recomputed on every location update.
func (s *Shipment) CurrentETAMinutes() float64 {
	return s.currentETA
}

// ETARange returns the bounds of the latest estimate.
func (s *Shipment) ETARange() eta.Range {
	return s.etaRange
}

// Confidence returns the confidence of the latest estimate.
func (s *Shipment) Confidence() eta.Confidence {
	return s.confidence
}

// CreatorID returns the user who created the shipment.
func (s *Shipment) CreatorID() kernel.UUID {
	return s.creatorID
}

// Notes returns the free-text notes. They are never shown on the public tracking view.
func (s *Shipment) Notes() string {
	return s.notes
}

func (s *Shipment) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Shipment) UpdatedAt() time.Time {
	return s.updatedAt
}

// Version returns the persisted version used for optimistic locking.
func (s *Shipment) Version() int {
	return s.version
}

// AgentID returns the assigned agent, nil while unassigned.
func (s *Shipment) AgentID() *kernel.UUID {
	return s.agentID
}

// CurrentLocation returns the last reported position, nil before the first update.
func (s *Shipment) CurrentLocation() *kernel.Coordinate {
	return s.currentLocation
}

// LocationUpdatedAt returns when CurrentLocation was reported.
func (s *Shipment) LocationUpdatedAt() *time.Time {
	return s.locationUpdatedAt
}

// PickedUpAt is set once the shipment reaches PickedUp.
func (s *Shipment) PickedUpAt() *time.Time {
	return s.pickedUpAt
}

// DeliveredAt is set only for Delivered shipments.
func (s *Shipment) DeliveredAt() *time.Time {
	return s.deliveredAt
}

// IsAssignedTo reports whether agentID is the shipment's agent.
func (s *Shipment) IsAssignedTo(agentID kernel.UUID) bool {
	return s.agentID != nil && s.agentID.IsEqual(agentID)
}

// TransitionTo moves the shipment along one edge of the status graph and stamps
// pickedUpAt/deliveredAt on first entry. On error the shipment is unchanged.
// Assigned is reached through AssignAgent only.
func (s *Shipment) TransitionTo(next Status, now time.Time) (StatusChangedEvent, error) {
	if err := s.Validate(); err != nil {
		return StatusChangedEvent{}, err
	}

	newStatus, err := s.status.Transition(next)
	if err != nil {
		return StatusChangedEvent{}, err
	}
	if newStatus == Assigned {
		return StatusChangedEvent{}, ErrAgentRequired
	}

	previous := s.status
	s.status = newStatus
	if newStatus == PickedUp && s.pickedUpAt == nil {
		s.pickedUpAt = timePtr(now)
	}
	if newStatus == Delivered && s.deliveredAt == nil {
		s.deliveredAt = timePtr(now)
	}
	s.updatedAt = now

	return StatusChangedEvent{
		Tracking:  s.trackingNumber,
		OldStatus: previous,
		NewStatus: newStatus,
		Timestamp: now,
	}, nil
}

// AssignAgent sets the agent and moves Pending to Assigned as one state change.
// Reassignment is not supported: any status other than Pending is rejected.
func (s *Shipment) AssignAgent(agentID kernel.UUID, now time.Time) (AssignmentEvent, error) {
	if err := s.Validate(); err != nil {
		return AssignmentEvent{}, err
	}
	if err := agentID.Validate(); err != nil {
		return AssignmentEvent{}, err
	}

	newStatus, err := s.status.Transition(Assigned)
	if err != nil {
		return AssignmentEvent{}, err
	}

	s.status = newStatus
	s.agentID = &agentID
	s.updatedAt = now

	return AssignmentEvent{
		Tracking:  s.trackingNumber,
		AgentID:   agentID,
		Timestamp: now,
	}, nil
}

// UpdateLocation records the agent position and the estimate recomputed from it.
// Status is never changed here.
func (s *Shipment) UpdateLocation(
	location kernel.Coordinate,
	estimate eta.Estimate,
	now time.Time,
) (LocationUpdatedEvent, ETAChangedEvent, error) {
	if err := s.Validate(); err != nil {
		return LocationUpdatedEvent{}, ETAChangedEvent{}, err
	}
	if s.status.IsTerminal() {
		return LocationUpdatedEvent{}, ETAChangedEvent{}, fmt.Errorf("%w: %s", ErrShipmentIsClosed, s.status)
	}
	if err := location.Validate(); err != nil {
		return LocationUpdatedEvent{}, ETAChangedEvent{}, err
	}
	if err := estimate.Validate(); err != nil {
		return LocationUpdatedEvent{}, ETAChangedEvent{}, err
	}

	s.currentLocation = &location
	s.locationUpdatedAt = timePtr(now)
	s.currentETA = estimate.Minutes
	s.etaRange = estimate.Range
	s.confidence = estimate.Confidence
	s.updatedAt = now

	return LocationUpdatedEvent{
			Tracking:  s.trackingNumber,
			Lat:       location.Lat(),
			Lng:       location.Lng(),
			Timestamp: now,
		}, ETAChangedEvent{
			Tracking:   s.trackingNumber,
			Minutes:    estimate.Minutes,
			Confidence: estimate.Confidence,
			Range:      estimate.Range,
			Timestamp:  now,
		}, nil
}

// CheckInvariants verifies the cross-field rules listed on Shipment.
func (s *Shipment) CheckInvariants() error {
	if err := s.Validate(); err != nil {
		return err
	}

	var violations []error

	if s.status.HasReachedPickup() && s.pickedUpAt == nil {
		violations = append(violations, errs.NewValueIsRequiredError("pickedUpAt"))
	}
	if (s.status == Pending || s.status == Assigned) && s.pickedUpAt != nil {
		violations = append(violations, errs.NewValueIsInvalidErrorWithCause(
			"pickedUpAt", fmt.Errorf("must be empty while %s", s.status)))
	}
	if (s.status == Delivered) != (s.deliveredAt != nil) {
		violations = append(violations, errs.NewValueIsInvalidErrorWithCause(
			"deliveredAt", fmt.Errorf("must be set if and only if delivered, status is %s", s.status)))
	}
	if s.status.RequiresAgent() && s.agentID == nil {
		violations = append(violations, errs.NewValueIsRequiredError("agentID"))
	}
	if s.status == Pending && s.agentID != nil {
		violations = append(violations, errs.NewValueIsInvalidErrorWithCause(
			"agentID", errors.New("must be empty while pending")))
	}
	if (s.currentLocation == nil) != (s.locationUpdatedAt == nil) {
		violations = append(violations, errs.NewValueIsInvalidErrorWithCause(
			"currentLocation", errors.New("position and its timestamp must be set together")))
	}
	if s.currentETA < 0 || s.estimatedMinutes < 0 || s.distanceKm < 0 {
		violations = append(violations, errs.NewValueIsInvalidErrorWithCause(
			"eta", errors.New("minutes and distance must not be negative")))
	}

	return errors.Join(violations...)
}

func (s *Shipment) setTrackingNumber(number TrackingNumber) error {
	if err := number.Validate(); err != nil {
		return err
	}
	s.trackingNumber = number
	return nil
}

func (s *Shipment) setCreator(creatorID kernel.UUID) error {
	if err := creatorID.Validate(); err != nil {
		return err
	}
	s.creatorID = creatorID
	return nil
}

func (s *Shipment) setAddresses(pickup, delivery kernel.Address) error {
	distance, err := Distance(pickup, delivery)
	if err != nil {
		return &kernel.InvalidAddressError{Field: "pickup/delivery", Cause: err}
	}

	s.pickup = pickup
	s.delivery = delivery
	s.distanceKm = eta.Round2(distance)
	return nil
}

func (s *Shipment) setEstimate(estimate eta.Estimate) error {
	if err := estimate.Validate(); err != nil {
		return err
	}
	s.currentETA = estimate.Minutes
	s.etaRange = estimate.Range
	s.confidence = estimate.Confidence
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
