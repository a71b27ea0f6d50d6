package handler // HTTP handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/middleware"
	"github.com/cineticket/cineticket-api/internal/service"
)

// requestTimeout bounds the database work done for one request.
const requestTimeout = 5 * time.Second

// RequestValidator adapts validator/v10 to echo.Validator so handlers can
// call c.Validate on bound DTOs.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return &service.ValidationError{Field: fe.Field(), Message: describeTag(fe)}
		}
		return &service.ValidationError{Message: err.Error()}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}

// bind decodes the request body into dst and validates it.  Decode
// failures become a ValidationError.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return &service.ValidationError{Message: "invalid request body"}
	}
	return c.Validate(dst)
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// getUserID returns the authenticated user id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.ErrUnauthorized
	}
	return id, nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError maps service and repository errors onto HTTP statuses.
// Anything unrecognised is logged and reported as a generic 500.
func respondError(c echo.Context, log logrus.FieldLogger, err error) error {
	var (
		ve  *service.ValidationError
		sce *service.SeatConflictError
		he  *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	case errors.As(err, &sce):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":              sce.Error(),
			"unavailableSeatIds": sce.SeatIDs,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &he):
		return c.JSON(he.Code, echo.Map{"error": fmt.Sprint(he.Message)})
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).WithField("path", c.Path()).Error("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	log.WithError(err).WithFields(logrus.Fields{
		"path":       c.Path(),
		"request_id": c.Get("request_id"),
	}).Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
