package http

import (
	"errors"
	"fmt"
	"net/http"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var errUnauthenticated = errors.New("caller identity is missing or malformed")

type badRequestError struct {
	cause error
}

func (e *badRequestError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.cause)
}

func (e *badRequestError) Unwrap() error {
	return e.cause
}

// actorFrom resolves the caller from the identity headers set by the gateway.
func actorFrom(ctx echo.Context) (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(ctx.Request().Header.Get(HeaderUserID))
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %s", errUnauthenticated, HeaderUserID)
	}
	role, err := kernel.ParseRole(ctx.Request().Header.Get(HeaderUserRole))
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %s", errUnauthenticated, HeaderUserRole)
	}
	return kernel.Actor{ID: id, Role: role}, nil
}

func statusOf(err error) int {
	var badRequest *badRequestError

	switch {
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipment.ErrInvalidTransition),
		errors.Is(err, shipment.ErrShipmentIsClosed),
		errors.Is(err, shipment.ErrAgentRequired),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict
	case errors.Is(err, kernel.ErrInvalidCoordinate),
		errors.Is(err, kernel.ErrInvalidAddress),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response. Server errors are logged and their details hidden.
func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusOf(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err)
		message = http.StatusText(code)
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}
