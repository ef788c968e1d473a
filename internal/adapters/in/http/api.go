package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (POST /shipments)
	CreateShipment(ctx echo.Context) error
	// (PUT /shipments/{trackingNumber}/status)
	TransitionStatus(ctx echo.Context, trackingNumber string) error
	// (POST /shipments/{trackingNumber}/location)
	UpdateLocation(ctx echo.Context, trackingNumber string) error
	// (POST /shipments/{trackingNumber}/assign)
	AssignAgent(ctx echo.Context, trackingNumber string) error
	// (GET /tracking/{trackingNumber})
	GetTracking(ctx echo.Context, trackingNumber string) error
	// (GET /analytics/overview)
	GetAnalyticsOverview(ctx echo.Context) error
	// (GET /analytics/shipments-per-day)
	GetShipmentsPerDay(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateShipment(ctx echo.Context) error {
	return w.Handler.CreateShipment(ctx)
}

func (w *ServerInterfaceWrapper) TransitionStatus(ctx echo.Context) error {
	trackingNumber, err := bindTrackingNumber(ctx)
	if err != nil {
		return err
	}
	return w.Handler.TransitionStatus(ctx, trackingNumber)
}

func (w *ServerInterfaceWrapper) UpdateLocation(ctx echo.Context) error {
	trackingNumber, err := bindTrackingNumber(ctx)
	if err != nil {
		return err
	}
	return w.Handler.UpdateLocation(ctx, trackingNumber)
}

func (w *ServerInterfaceWrapper) AssignAgent(ctx echo.Context) error {
	trackingNumber, err := bindTrackingNumber(ctx)
	if err != nil {
		return err
	}
	return w.Handler.AssignAgent(ctx, trackingNumber)
}

func (w *ServerInterfaceWrapper) GetTracking(ctx echo.Context) error {
	trackingNumber, err := bindTrackingNumber(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetTracking(ctx, trackingNumber)
}

func (w *ServerInterfaceWrapper) GetAnalyticsOverview(ctx echo.Context) error {
	return w.Handler.GetAnalyticsOverview(ctx)
}

func (w *ServerInterfaceWrapper) GetShipmentsPerDay(ctx echo.Context) error {
	return w.Handler.GetShipmentsPerDay(ctx)
}

func bindTrackingNumber(ctx echo.Context) (string, error) {
	var trackingNumber string
	err := runtime.BindStyledParameterWithOptions("simple", "trackingNumber", ctx.Param("trackingNumber"),
		&trackingNumber, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter trackingNumber: %s", err))
	}
	return trackingNumber, nil
}

// EchoRouter is the part of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlersWithBaseURL adds every operation under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/shipments", wrapper.CreateShipment)
	router.PUT(baseURL+"/shipments/:trackingNumber/status", wrapper.TransitionStatus)
	router.POST(baseURL+"/shipments/:trackingNumber/location", wrapper.UpdateLocation)
	router.POST(baseURL+"/shipments/:trackingNumber/assign", wrapper.AssignAgent)
	router.GET(baseURL+"/tracking/:trackingNumber", wrapper.GetTracking)
	router.GET(baseURL+"/analytics/overview", wrapper.GetAnalyticsOverview)
	router.GET(baseURL+"/analytics/shipments-per-day", wrapper.GetShipmentsPerDay)
}
