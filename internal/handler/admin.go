package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/service"
)

// AdminHandler serves flight management and reservation oversight for the
// ADMIN role.
type AdminHandler struct {
	Catalog *service.FlightCatalog
	Booking *service.BookingOrchestrator
	Ledger  *service.ReservationLedger
}

func NewAdminHandler(catalog *service.FlightCatalog, booking *service.BookingOrchestrator, ledger *service.ReservationLedger) *AdminHandler {
	if catalog == nil || booking == nil || ledger == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Catalog: catalog, Booking: booking, Ledger: ledger}
}

type createFlightReq struct {
	FlightNumber  string    `json:"flight_number" validate:"required,flightnumber"`
	Origin        string    `json:"origin" validate:"required,max=100"`
	Destination   string    `json:"destination" validate:"required,max=100"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
	SeatCapacity  int       `json:"seat_capacity"`
}

// CreateFlight handles POST /v1/admin/flights.  The seat pool is generated
// with the flight.
func (h *AdminHandler) CreateFlight(c echo.Context) error {
	var req createFlightReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	f, err := h.Catalog.Create(c.Request().Context(), service.NewFlight{
		FlightNumber: req.FlightNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartureAt:  req.DepartureTime,
		ArrivalAt:    req.ArrivalTime,
		SeatCapacity: req.SeatCapacity,
	})
	if err != nil {
		return writeError(c, err)
	}
	// every seat of a new flight is free
	return c.JSON(http.StatusCreated, service.FlightAvailability{Flight: f, AvailableSeats: f.SeatCapacity})
}

type updateFlightReq struct {
	Origin        *string    `json:"origin" validate:"omitempty,min=1,max=100"`
	Destination   *string    `json:"destination" validate:"omitempty,min=1,max=100"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
}

// UpdateFlight handles PUT /v1/admin/flights/:id.  Omitted fields keep
// their value.
func (h *AdminHandler) UpdateFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	var req updateFlightReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	f, err := h.Catalog.Update(c.Request().Context(), id, model.FlightPatch{
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartureAt: req.DepartureTime,
		ArrivalAt:   req.ArrivalTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// CancelFlight handles PATCH /v1/admin/flights/:id/cancel.
func (h *AdminHandler) CancelFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	f, err := h.Catalog.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// DeleteFlight handles DELETE /v1/admin/flights/:id.  Seats and
// reservations of the flight go with it.
func (h *AdminHandler) DeleteFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FlightReservations handles GET /v1/admin/flights/:id/reservations,
// optionally ?status=CONFIRMED.
func (h *AdminHandler) FlightReservations(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "flight")
	}
	ctx := c.Request().Context()
	if _, err := h.Catalog.Get(ctx, id); err != nil {
		return writeError(c, err)
	}
	var (
		list []model.Reservation
		err  error
	)
	switch s := c.QueryParam("status"); s {
	case "":
		list, err = h.Ledger.ListByFlight(ctx, id)
	default:
		status, ok := model.ParseReservationStatus(s)
		if !ok {
			return badRequest(c, "INVALID_STATUS", "status must be CONFIRMED or CANCELLED")
		}
		if status == model.ReservationConfirmed {
			list, err = h.Ledger.ListConfirmedByFlight(ctx, id)
			break
		}
		list, err = h.Ledger.ListByFlight(ctx, id)
		list = filterStatus(list, status)
	}
	if err != nil {
		return writeError(c, err)
	}
	details, err := h.Booking.Describe(ctx, list)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// Reservations handles GET /v1/admin/reservations.
func (h *AdminHandler) Reservations(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.Ledger.ListAll(ctx)
	if err != nil {
		return writeError(c, err)
	}
	details, err := h.Booking.Describe(ctx, list)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// DeleteReservation handles DELETE /v1/admin/reservations/:id.
func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "reservation")
	}
	if _, err := h.Booking.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OccupySeat handles POST /v1/admin/seats/:id/occupy (check-in).
func (h *AdminHandler) OccupySeat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "seat")
	}
	seat, err := h.Booking.CheckIn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, seat)
}
