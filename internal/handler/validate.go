package handler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var flightNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,8}$`)

// flightNumber accepts 2 to 8 letters or digits, e.g. KQ100.
var flightNumber validator.Func = func(fl validator.FieldLevel) bool {
	return flightNumberPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// Validator adapts validator/v10 to echo.Validator so handlers can call
// c.Validate on bound request bodies.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator with the custom tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("flightnumber", flightNumber); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validationMessage turns validator errors into one short client message.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// bindValid binds the request body into dst and validates it.  On failure
// it writes the 400 response itself and returns ok=false.
func bindValid(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, badRequest(c, "INVALID_BODY", "invalid body")
	}
	if err := c.Validate(dst); err != nil {
		return false, badRequest(c, "VALIDATION_FAILED", validationMessage(err))
	}
	return true, nil
}
