package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // model.Role
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role into the request context.  Handlers
// read them back with Principal.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token", "code": model.ErrUnauthorized.Code})
			}
			p, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token", "code": model.ErrUnauthorized.Code})
			}
			c.Set(CtxUserID, p.UserID)
			c.Set(CtxRole, p.Role)
			return next(c)
		}
	}
}

// Principal returns the authenticated caller stored by JWTAuth.  ok is
// false on routes that did not run JWTAuth.
func Principal(c echo.Context) (model.Principal, bool) {
	uid, ok := c.Get(CtxUserID).(uint64)
	if !ok || uid == 0 {
		return model.Principal{}, false
	}
	role, _ := c.Get(CtxRole).(model.Role)
	return model.Principal{UserID: uid, Role: role}, true
}
