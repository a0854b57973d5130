package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/queue"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
)

// BookingOrchestrator is the only writer that changes a seat and a
// reservation together.  Each operation runs in one store transaction, so
// a failure after the seat was reserved rolls the seat back to AVAILABLE
// before control returns to the caller.
type BookingOrchestrator struct {
	store    repository.Store
	releases ReleaseScheduler
	events   EventPublisher
}

// NewBookingOrchestrator wires the orchestrator.  A nil events publisher
// disables events.
func NewBookingOrchestrator(store repository.Store, releases ReleaseScheduler, events EventPublisher) *BookingOrchestrator {
	if store == nil || releases == nil {
		panic("nil dependency passed to NewBookingOrchestrator")
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingOrchestrator{store: store, releases: releases, events: events}
}

// Book reserves seatID on flightID for the principal.
func (o *BookingOrchestrator) Book(ctx context.Context, p model.Principal, flightID, seatID uint64) (model.ReservationDetail, error) {
	var detail model.ReservationDetail
	err := o.store.WithTx(ctx, func(tx repository.Tx) error {
		// held until commit so a concurrent cancel cannot slip in
		flight, err := tx.Flights().GetForShare(ctx, flightID)
		if err != nil {
			return err
		}
		if !flight.Bookable() {
			return model.ErrFlightNotBookable
		}
		seat, err := tx.Seats().GetByID(ctx, seatID)
		if err != nil {
			return err
		}
		if seat.FlightID != flight.ID {
			return model.ErrSeatFlightMismatch
		}
		seat, err = NewSeatInventory(tx.Seats()).TryReserve(ctx, seat.ID)
		if err != nil {
			return err
		}
		res, err := NewReservationLedger(tx.Reservations()).Create(ctx, p.UserID, flight.ID, seat.ID)
		if err != nil {
			return err
		}
		detail = model.NewReservationDetail(res, flight, seat)
		return nil
	})
	if err != nil {
		return model.ReservationDetail{}, fmt.Errorf("book seat %d on flight %d: %w", seatID, flightID, err)
	}
	o.publish(ctx, queue.ReservationConfirmedEvent, detail)
	return detail, nil
}

// releaseFailure marks an error raised by the seat release step so the
// caller can commit the reservation change on its own.
type releaseFailure struct {
	seatID uint64
	err    error
}

func (e *releaseFailure) Error() string { return fmt.Sprintf("release seat %d: %v", e.seatID, e.err) }
func (e *releaseFailure) Unwrap() error { return e.err }

// Cancel cancels the user's reservation and frees its seat.  If freeing
// the seat fails, the cancellation still commits and succeeds, and the
// release is handed to the release scheduler.
func (o *BookingOrchestrator) Cancel(ctx context.Context, reservationID, userID uint64) (model.Reservation, error) {
	res, err := o.unwind(ctx, func(l *ReservationLedger) (model.Reservation, error) {
		return l.Cancel(ctx, reservationID, userID)
	})
	if err != nil {
		return model.Reservation{}, fmt.Errorf("cancel reservation %d: %w", reservationID, err)
	}
	o.publish(ctx, queue.ReservationCancelledEvent, o.describe(ctx, res))
	return res, nil
}

// AdminDelete removes a reservation regardless of owner.  A CONFIRMED
// reservation has its seat freed first.
func (o *BookingOrchestrator) AdminDelete(ctx context.Context, reservationID uint64) (model.Reservation, error) {
	res, err := o.unwind(ctx, func(l *ReservationLedger) (model.Reservation, error) {
		r, err := l.Get(ctx, reservationID)
		if err != nil {
			return model.Reservation{}, err
		}
		if err := l.Delete(ctx, r.ID); err != nil {
			return model.Reservation{}, err
		}
		if !r.Active() {
			// nothing holds the seat; mark it so unwind skips the release
			r.SeatID = 0
		}
		return r, nil
	})
	if err != nil {
		return model.Reservation{}, fmt.Errorf("delete reservation %d: %w", reservationID, err)
	}
	o.publish(ctx, queue.ReservationDeletedEvent, o.describe(ctx, res))
	return res, nil
}

// unwind runs change and then releases the returned reservation's seat in
// the same transaction.  When only the release fails, change is re-run in
// a fresh transaction without the release and the seat is scheduled for a
// later release.
func (o *BookingOrchestrator) unwind(ctx context.Context, change func(l *ReservationLedger) (model.Reservation, error)) (model.Reservation, error) {
	var res model.Reservation
	err := o.store.WithTx(ctx, func(tx repository.Tx) error {
		r, err := change(NewReservationLedger(tx.Reservations()))
		if err != nil {
			return err
		}
		res = r
		if r.SeatID == 0 {
			return nil
		}
		if _, err := NewSeatInventory(tx.Seats()).Release(ctx, r.SeatID); err != nil {
			return &releaseFailure{seatID: r.SeatID, err: err}
		}
		return nil
	})

	var rf *releaseFailure
	if !errors.As(err, &rf) {
		return res, err
	}

	err = o.store.WithTx(ctx, func(tx repository.Tx) error {
		r, err := change(NewReservationLedger(tx.Reservations()))
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	req := queue.NewSeatReleaseRequest(rf.seatID, res.ID, rf.err.Error())
	if serr := o.releases.ScheduleRelease(context.WithoutCancel(ctx), req); serr != nil {
		log.Printf("booking: schedule release of seat %d failed: %v", rf.seatID, serr)
	} else {
		log.Printf("booking: seat %d release deferred: %v", rf.seatID, rf.err)
	}
	return res, nil
}

// CheckIn marks a reserved seat OCCUPIED.
func (o *BookingOrchestrator) CheckIn(ctx context.Context, seatID uint64) (model.Seat, error) {
	seat, err := NewSeatInventory(o.store.Seats()).Occupy(ctx, seatID)
	if err != nil {
		return model.Seat{}, fmt.Errorf("check in seat %d: %w", seatID, err)
	}
	return seat, nil
}

// Describe joins reservations with their flight and seat.  Reservations
// whose flight or seat is gone are returned with those fields empty.
func (o *BookingOrchestrator) Describe(ctx context.Context, list []model.Reservation) ([]model.ReservationDetail, error) {
	flights := map[uint64]model.Flight{}
	out := make([]model.ReservationDetail, 0, len(list))
	for _, r := range list {
		f, ok := flights[r.FlightID]
		if !ok {
			var err error
			f, err = o.store.Flights().GetByID(ctx, r.FlightID)
			if err != nil && !errors.Is(err, model.ErrFlightNotFound) {
				return nil, err
			}
			flights[r.FlightID] = f
		}
		s, err := o.store.Seats().GetByID(ctx, r.SeatID)
		if err != nil && !errors.Is(err, model.ErrSeatNotFound) {
			return nil, err
		}
		out = append(out, model.NewReservationDetail(r, f, s))
	}
	return out, nil
}

func (o *BookingOrchestrator) describe(ctx context.Context, r model.Reservation) model.ReservationDetail {
	out, err := o.Describe(ctx, []model.Reservation{r})
	if err != nil || len(out) == 0 {
		return model.ReservationDetail{Reservation: r}
	}
	return out[0]
}

func (o *BookingOrchestrator) publish(ctx context.Context, t queue.ReservationEventType, d model.ReservationDetail) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := o.events.PublishReservationEvent(pctx, reservationEvent(t, d)); err != nil {
		log.Printf("booking: publish %s for reservation %d: %v", t, d.ID, err)
	}
}
