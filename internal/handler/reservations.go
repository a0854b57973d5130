package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/service"
)

// ReservationHandler serves the customer booking endpoints.  All routes run
// behind JWTAuth, so a missing principal is answered with 401.
type ReservationHandler struct {
	Booking *service.BookingOrchestrator
	Ledger  *service.ReservationLedger
}

func NewReservationHandler(booking *service.BookingOrchestrator, ledger *service.ReservationLedger) *ReservationHandler {
	if booking == nil || ledger == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: booking, Ledger: ledger}
}

type bookReq struct {
	FlightID uint64 `json:"flight_id" validate:"required"`
	SeatID   uint64 `json:"seat_id" validate:"required"`
}

// Book handles POST /v1/reservations.
func (h *ReservationHandler) Book(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var req bookReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	detail, err := h.Booking.Book(c.Request().Context(), p, req.FlightID, req.SeatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Mine handles GET /v1/reservations/mine, optionally ?status=CONFIRMED.
func (h *ReservationHandler) Mine(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx := c.Request().Context()
	var (
		list []model.Reservation
		err  error
	)
	switch s := c.QueryParam("status"); s {
	case "":
		list, err = h.Ledger.ListByUser(ctx, p.UserID)
	default:
		status, ok := model.ParseReservationStatus(s)
		if !ok {
			return badRequest(c, "INVALID_STATUS", "status must be CONFIRMED or CANCELLED")
		}
		if status == model.ReservationConfirmed {
			list, err = h.Ledger.ListConfirmedByUser(ctx, p.UserID)
			break
		}
		list, err = h.Ledger.ListByUser(ctx, p.UserID)
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

func filterStatus(list []model.Reservation, status model.ReservationStatus) []model.Reservation {
	out := list[:0]
	for _, r := range list {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// Get handles GET /v1/reservations/:id.  Another user's reservation is
// reported as not found.
func (h *ReservationHandler) Get(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "reservation")
	}
	ctx := c.Request().Context()
	r, err := h.Ledger.GetForUser(ctx, id, p.UserID)
	if err != nil {
		return writeError(c, err)
	}
	details, err := h.Booking.Describe(ctx, []model.Reservation{r})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, details[0])
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c, "reservation")
	}
	r, err := h.Booking.Cancel(c.Request().Context(), id, p.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
