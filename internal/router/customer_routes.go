package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/handler"
	"github.com/Kipz123/airline-booking-backend/internal/middleware"
	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// RegisterCustomer registers the booking endpoints under /v1/reservations.
// All routes require a valid JWT with the CUSTOMER or ADMIN role, and
// handlers only ever act on the caller's own reservations.  Booking and
// cancelling are rate limited.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("", h.Book, limiter)
	g.GET("/mine", h.Mine)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Cancel, limiter)
}
