package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/handler"
	"github.com/Kipz123/airline-booking-backend/internal/middleware"
	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// RegisterAdmin registers flight management and reservation oversight
// under /v1/admin.  Every route requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.POST("/flights", h.CreateFlight)
	g.PUT("/flights/:id", h.UpdateFlight)
	g.PATCH("/flights/:id/cancel", h.CancelFlight)
	g.DELETE("/flights/:id", h.DeleteFlight)
	g.GET("/flights/:id/reservations", h.FlightReservations)

	g.GET("/reservations", h.Reservations)
	g.DELETE("/reservations/:id", h.DeleteReservation)

	g.POST("/seats/:id/occupy", h.OccupySeat)
}
