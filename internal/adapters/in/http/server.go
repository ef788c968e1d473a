package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	maxBodySize = 64 << 10
)

type (
	CreateShipmentHandler interface {
		Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (*shipment.Shipment, error)
	}
	TransitionStatusHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionStatusCommand) (*shipment.Shipment, error)
	}
	UpdateLocationHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateLocationCommand) (*shipment.Shipment, error)
	}
	AssignAgentHandler interface {
		Handle(ctx context.Context, cmd commands.AssignAgentCommand) (*shipment.Shipment, error)
	}
	TrackingSnapshotHandler interface {
		Handle(ctx context.Context, query queries.GetTrackingSnapshotQuery) (queries.TrackingSnapshot, error)
	}
	AnalyticsOverviewHandler interface {
		Handle(ctx context.Context, query queries.GetAnalyticsOverviewQuery) (queries.AnalyticsOverview, error)
	}
	ShipmentsPerDayHandler interface {
		Handle(ctx context.Context, query queries.GetShipmentsPerDayQuery) ([]queries.DayCount, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateShipment    CreateShipmentHandler
	TransitionStatus  TransitionStatusHandler
	UpdateLocation    UpdateLocationHandler
	AssignAgent       AssignAgentHandler
	TrackingSnapshot  TrackingSnapshotHandler
	AnalyticsOverview AnalyticsOverviewHandler
	ShipmentsPerDay   ShipmentsPerDayHandler
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers  Handlers
	validator bodyValidator
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, logger *slog.Logger) (*Server, error) {
	doc, err := Spec()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		handlers:  handlers,
		validator: bodyValidator{doc: doc},
		logger:    logger.With("component", "HTTPServer"),
	}, nil
}

// CreateShipment handles POST /api/v1/shipments - registers a new shipment.
func (s *Server) CreateShipment(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body NewShipment
	if err = s.bind(ctx, "NewShipment", &body); err != nil {
		return s.fail(ctx, err)
	}

	pickup, pickupErr := kernel.ParseAddress(body.Pickup.Address, body.Pickup.Lat, body.Pickup.Lng)
	delivery, deliveryErr := kernel.ParseAddress(body.Delivery.Address, body.Delivery.Lat, body.Delivery.Lng)
	if err = errors.Join(pickupErr, deliveryErr); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateShipmentCommand(actor.ID, pickup, delivery, shipment.Options{
		Vehicle: eta.VehicleType(body.VehicleType),
		Weather: eta.Weather(body.Weather),
		Route:   eta.Route(body.Route),
		Notes:   body.Notes,
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.handlers.CreateShipment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toShipment(created))
}

// TransitionStatus handles PUT /api/v1/shipments/{trackingNumber}/status.
func (s *Server) TransitionStatus(ctx echo.Context, trackingNumber string) error {
	actor, number, err := s.target(ctx, trackingNumber)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body StatusChange
	if err = s.bind(ctx, "StatusChange", &body); err != nil {
		return s.fail(ctx, err)
	}
	status, err := shipment.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewTransitionStatusCommand(number, actor, status)
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.TransitionStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toShipment(updated))
}

// UpdateLocation handles POST /api/v1/shipments/{trackingNumber}/location.
func (s *Server) UpdateLocation(ctx echo.Context, trackingNumber string) error {
	actor, number, err := s.target(ctx, trackingNumber)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body LocationReport
	if err = s.bind(ctx, "LocationReport", &body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUpdateLocationCommand(number, actor, body.Lat, body.Lng)
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.UpdateLocation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toShipment(updated))
}

// AssignAgent handles POST /api/v1/shipments/{trackingNumber}/assign.
func (s *Server) AssignAgent(ctx echo.Context, trackingNumber string) error {
	actor, number, err := s.target(ctx, trackingNumber)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Assignment
	if err = s.bind(ctx, "Assignment", &body); err != nil {
		return s.fail(ctx, err)
	}
	agentID, err := kernel.UUIDFromString(body.AgentID)
	if err != nil {
		return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("agentId", err))
	}

	cmd, err := commands.NewAssignAgentCommand(number, actor, agentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.AssignAgent.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toShipment(updated))
}

// GetTracking handles GET /api/v1/tracking/{trackingNumber}. It needs no identity.
func (s *Server) GetTracking(ctx echo.Context, trackingNumber string) error {
	number, err := shipment.ParseTrackingNumber(trackingNumber)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetTrackingSnapshotQuery(number)
	if err != nil {
		return s.fail(ctx, err)
	}

	snapshot, err := s.handlers.TrackingSnapshot.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, snapshot)
}

// GetAnalyticsOverview handles GET /api/v1/analytics/overview.
func (s *Server) GetAnalyticsOverview(ctx echo.Context) error {
	overview, err := s.handlers.AnalyticsOverview.Handle(ctx.Request().Context(), queries.NewGetAnalyticsOverviewQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, overview)
}

// GetShipmentsPerDay handles GET /api/v1/analytics/shipments-per-day.
func (s *Server) GetShipmentsPerDay(ctx echo.Context) error {
	days, err := s.handlers.ShipmentsPerDay.Handle(ctx.Request().Context(), queries.NewGetShipmentsPerDayQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, days)
}

func (s *Server) target(ctx echo.Context, trackingNumber string) (kernel.Actor, shipment.TrackingNumber, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return kernel.Actor{}, "", err
	}
	number, err := shipment.ParseTrackingNumber(trackingNumber)
	if err != nil {
		return kernel.Actor{}, "", err
	}
	return actor, number, nil
}

// bind reads the body, checks it against the named schema and decodes it into dst.
func (s *Server) bind(ctx echo.Context, schemaName string, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxBodySize))
	if err != nil {
		return &badRequestError{cause: err}
	}
	if err = s.validator.validate(schemaName, raw); err != nil {
		return &badRequestError{cause: err}
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		return &badRequestError{cause: err}
	}
	return nil
}
