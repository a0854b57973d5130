package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
)

// ReservationLedger owns reservation records.  It never touches seat
// status; pairing a reservation change with its seat is the orchestrator's
// job.
type ReservationLedger struct {
	reservations repository.ReservationRepository
	now          func() time.Time
}

// NewReservationLedger returns a ledger over reservations.
func NewReservationLedger(reservations repository.ReservationRepository) *ReservationLedger {
	return &ReservationLedger{reservations: reservations, now: func() time.Time { return time.Now().UTC() }}
}

// Create writes a CONFIRMED reservation stamped with the current time.
func (l *ReservationLedger) Create(ctx context.Context, userID, flightID, seatID uint64) (model.Reservation, error) {
	r := model.Reservation{
		UserID:    userID,
		FlightID:  flightID,
		SeatID:    seatID,
		Status:    model.ReservationConfirmed,
		CreatedAt: l.now(),
	}
	if err := l.reservations.Create(ctx, &r); err != nil {
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	return r, nil
}

// Cancel marks the user's reservation CANCELLED.  A reservation that does
// not exist or belongs to someone else is model.ErrReservationNotFound.
func (l *ReservationLedger) Cancel(ctx context.Context, reservationID, userID uint64) (model.Reservation, error) {
	r, err := l.reservations.GetByIDAndUser(ctx, reservationID, userID)
	if err != nil {
		return model.Reservation{}, err
	}
	next, err := r.Status.Cancel()
	if err != nil {
		return r, err
	}
	ok, err := l.reservations.UpdateStatus(ctx, r.ID, r.Status, next)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("cancel reservation %d: %w", r.ID, err)
	}
	if !ok {
		// lost to a concurrent cancel
		return r, model.ErrAlreadyCancelled
	}
	r.Status = next
	return r, nil
}

// Delete hard-deletes a reservation record.
func (l *ReservationLedger) Delete(ctx context.Context, reservationID uint64) error {
	return l.reservations.Delete(ctx, reservationID)
}

func (l *ReservationLedger) Get(ctx context.Context, id uint64) (model.Reservation, error) {
	return l.reservations.GetByID(ctx, id)
}

func (l *ReservationLedger) GetForUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
	return l.reservations.GetByIDAndUser(ctx, id, userID)
}

func (l *ReservationLedger) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return l.reservations.List(ctx)
}

func (l *ReservationLedger) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return l.reservations.ListByUser(ctx, userID)
}

func (l *ReservationLedger) ListConfirmedByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return l.reservations.ListByUserAndStatus(ctx, userID, model.ReservationConfirmed)
}

func (l *ReservationLedger) CountConfirmedByUser(ctx context.Context, userID uint64) (int, error) {
	return l.reservations.CountByUserAndStatus(ctx, userID, model.ReservationConfirmed)
}

func (l *ReservationLedger) ListByFlight(ctx context.Context, flightID uint64) ([]model.Reservation, error) {
	return l.reservations.ListByFlight(ctx, flightID)
}

func (l *ReservationLedger) ListConfirmedByFlight(ctx context.Context, flightID uint64) ([]model.Reservation, error) {
	return l.reservations.ListByFlightAndStatus(ctx, flightID, model.ReservationConfirmed)
}

func (l *ReservationLedger) ExistsConfirmedForSeat(ctx context.Context, seatID uint64) (bool, error) {
	return l.reservations.ExistsConfirmedForSeat(ctx, seatID)
}

// HasReservationForSeat reports whether userID holds a CONFIRMED reservation on seatID.
func (l *ReservationLedger) HasReservationForSeat(ctx context.Context, userID, seatID uint64) (bool, error) {
	return l.reservations.ExistsConfirmedForUserSeat(ctx, userID, seatID)
}
