package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/service"
)

// FlightHandler serves the public flight and seat browse endpoints.
type FlightHandler struct {
	Catalog   *service.FlightCatalog
	Inventory *service.SeatInventory
}

func NewFlightHandler(catalog *service.FlightCatalog, inventory *service.SeatInventory) *FlightHandler {
	if catalog == nil || inventory == nil {
		panic("nil dependency passed to NewFlightHandler")
	}
	return &FlightHandler{Catalog: catalog, Inventory: inventory}
}

// List handles GET /v1/flights with an optional ?status=SCHEDULED|CANCELLED.
func (h *FlightHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		flights []model.Flight
		err     error
	)
	if s := c.QueryParam("status"); s != "" {
		status, ok := model.ParseFlightStatus(s)
		if !ok {
			return badRequest(c, "INVALID_STATUS", "status must be SCHEDULED or CANCELLED")
		}
		flights, err = h.Catalog.ListByStatus(ctx, status)
	} else {
		flights, err = h.Catalog.List(ctx)
	}
	return writeFlights(c, h.Catalog, flights, err)
}

// Available handles GET /v1/flights/available: scheduled flights with at
// least one free seat.
func (h *FlightHandler) Available(c echo.Context) error {
	flights, err := h.Catalog.ListBookable(c.Request().Context())
	return writeFlights(c, h.Catalog, flights, err)
}

// Search handles GET /v1/flights/search?origin=&destination=.
func (h *FlightHandler) Search(c echo.Context) error {
	flights, err := h.Catalog.Search(c.Request().Context(), model.FlightSearch{
		Origin:      c.QueryParam("origin"),
		Destination: c.QueryParam("destination"),
	})
	return writeFlights(c, h.Catalog, flights, err)
}

// Departing handles GET /v1/flights/departing?from=&to= with RFC3339
// bounds.  Either bound may be omitted.
func (h *FlightHandler) Departing(c echo.Context) error {
	from, ok := parseTimeParam(c.QueryParam("from"))
	if !ok {
		return badRequest(c, "INVALID_TIME", "from must be RFC3339")
	}
	to, ok := parseTimeParam(c.QueryParam("to"))
	if !ok {
		return badRequest(c, "INVALID_TIME", "to must be RFC3339")
	}
	flights, err := h.Catalog.ListDepartingBetween(c.Request().Context(), from, to)
	return writeFlights(c, h.Catalog, flights, err)
}

// writeFlights answers with the flights and their free seat counts, or
// with err when the lookup failed.
func writeFlights(c echo.Context, catalog *service.FlightCatalog, flights []model.Flight, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	out, err := catalog.WithAvailability(c.Request().Context(), flights)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseTimeParam(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

// GetByNumber handles GET /v1/flights/number/:number.
func (h *FlightHandler) GetByNumber(c echo.Context) error {
	ctx := c.Request().Context()
	f, err := h.Catalog.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Catalog.GetWithAvailability(ctx, f.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/flights/:id and includes the free seat count.
func (h *FlightHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	f, err := h.Catalog.GetWithAvailability(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// Seats handles GET /v1/flights/:id/seats.
func (h *FlightHandler) Seats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	ctx := c.Request().Context()
	if _, err := h.Catalog.Get(ctx, id); err != nil {
		return writeError(c, err)
	}
	seats, err := h.Inventory.ListByFlight(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// AvailableSeats handles GET /v1/flights/:id/seats/available with an
// optional ?class=FIRST|BUSINESS|ECONOMY.
func (h *FlightHandler) AvailableSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	ctx := c.Request().Context()
	if _, err := h.Catalog.Get(ctx, id); err != nil {
		return writeError(c, err)
	}
	var (
		seats []model.Seat
		err   error
	)
	if s := c.QueryParam("class"); s != "" {
		class, ok := model.ParseCabinClass(s)
		if !ok {
			return badRequest(c, "INVALID_CLASS", "class must be FIRST, BUSINESS or ECONOMY")
		}
		seats, err = h.Inventory.ListAvailableByClass(ctx, id, class)
	} else {
		seats, err = h.Inventory.ListAvailableByFlight(ctx, id)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}
