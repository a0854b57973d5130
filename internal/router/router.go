package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/handler"
	"github.com/Kipz123/airline-booking-backend/internal/middleware"
	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication and
// belong to no resource group.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Session operations
// live under /v1/auth and are rate limited by limiter; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/register-admin", a.RegisterAdmin)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh_token body or a bearer token and so does not
	// run behind JWTAuth.
	g.POST("/logout", a.Logout)
	g.GET("/validate", a.Validate)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints for flights and
// seats.  Seat status is always read from the store.
func RegisterPublic(e *echo.Echo, f *handler.FlightHandler) {
	g := e.Group("/v1/flights")
	g.GET("", f.List)
	g.GET("/available", f.Available)
	g.GET("/search", f.Search)
	g.GET("/departing", f.Departing)
	g.GET("/number/:number", f.GetByNumber)
	g.GET("/:id", f.Get)
	g.GET("/:id/seats", f.Seats)
	g.GET("/:id/seats/available", f.AvailableSeats)
}
