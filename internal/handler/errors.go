// Package handler implements the HTTP endpoints.  Every error response has
// the body {"error": message, "code": CODE}.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/middleware"
	"github.com/Kipz123/airline-booking-backend/internal/model"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(k model.Kind) int {
	switch k {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError maps a service error onto a response.  Internal failures are
// logged and answered with a generic message.
func writeError(c echo.Context, err error) error {
	var de *model.Error
	if !errors.As(err, &de) {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error", Code: "INTERNAL"})
	}
	return c.JSON(statusFor(de.Kind), errorBody{Error: de.Msg, Code: de.Code})
}

func badRequest(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: code})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: msg, Code: model.ErrUnauthorized.Code})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c echo.Context, what string) error {
	return badRequest(c, "INVALID_ID", "invalid "+what+" id")
}

// principal returns the caller set by the JWT middleware.
func principal(c echo.Context) (model.Principal, bool) {
	return middleware.Principal(c)
}

// HTTPErrorHandler renders errors that escape handlers, such as unknown
// routes or echo.HTTPError values, in the common error body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = writeError(c, err)
		return
	}
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, errorBody{Error: msg, Code: code})
}
