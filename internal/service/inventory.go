package service

import (
	"context"
	"fmt"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
)

// SeatInventory owns seat status.  Every status change goes through
// SeatRepository.UpdateStatus with the legal source states for the target,
// so the check and the write are one atomic statement.
type SeatInventory struct {
	seats repository.SeatRepository
}

// NewSeatInventory returns an inventory over seats.  Pass tx.Seats() to run
// inside a transaction.
func NewSeatInventory(seats repository.SeatRepository) *SeatInventory {
	return &SeatInventory{seats: seats}
}

// Get returns a seat or model.ErrSeatNotFound.
func (s *SeatInventory) Get(ctx context.Context, seatID uint64) (model.Seat, error) {
	return s.seats.GetByID(ctx, seatID)
}

func (s *SeatInventory) ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error) {
	return s.seats.ListByFlight(ctx, flightID)
}

func (s *SeatInventory) ListAvailableByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error) {
	return s.seats.ListByFlightAndStatus(ctx, flightID, model.SeatAvailable)
}

func (s *SeatInventory) ListAvailableByClass(ctx context.Context, flightID uint64, class model.CabinClass) ([]model.Seat, error) {
	return s.seats.ListAvailableByClass(ctx, flightID, class)
}

func (s *SeatInventory) CountAvailable(ctx context.Context, flightID uint64) (int, error) {
	return s.seats.CountByFlightAndStatus(ctx, flightID, model.SeatAvailable)
}

// TryReserve moves an AVAILABLE seat to RESERVED.  Among concurrent callers
// for one seat exactly one wins; the rest get model.ErrSeatUnavailable and
// nothing is written.
func (s *SeatInventory) TryReserve(ctx context.Context, seatID uint64) (model.Seat, error) {
	ok, err := s.seats.UpdateStatus(ctx, seatID, model.SeatSources(model.SeatReserved), model.SeatReserved)
	if err != nil {
		return model.Seat{}, fmt.Errorf("reserve seat %d: %w", seatID, err)
	}
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		return model.Seat{}, err
	}
	if !ok {
		return seat, model.ErrSeatUnavailable
	}
	return seat, nil
}

// Release returns a RESERVED or OCCUPIED seat to AVAILABLE.  An AVAILABLE
// seat is returned as is.
func (s *SeatInventory) Release(ctx context.Context, seatID uint64) (model.Seat, error) {
	if _, err := s.seats.UpdateStatus(ctx, seatID, model.SeatSources(model.SeatAvailable), model.SeatAvailable); err != nil {
		return model.Seat{}, fmt.Errorf("release seat %d: %w", seatID, err)
	}
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		return model.Seat{}, err
	}
	return seat, nil
}

// Occupy moves a RESERVED seat to OCCUPIED at check-in.  The current
// status is checked first; the conditional update still decides when a
// concurrent change slips in between.
func (s *SeatInventory) Occupy(ctx context.Context, seatID uint64) (model.Seat, error) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		return model.Seat{}, err
	}
	if _, err := seat.Status.Transition(model.SeatOccupied); err != nil {
		return seat, err
	}
	ok, err := s.seats.UpdateStatus(ctx, seatID, model.SeatSources(model.SeatOccupied), model.SeatOccupied)
	if err != nil {
		return model.Seat{}, fmt.Errorf("occupy seat %d: %w", seatID, err)
	}
	if seat, err = s.seats.GetByID(ctx, seatID); err != nil {
		return model.Seat{}, err
	}
	if !ok {
		return seat, model.ErrIllegalSeatTransition
	}
	return seat, nil
}

// ReleaseIfUnclaimed frees the seat only when no CONFIRMED reservation
// holds it.  It is safe to call repeatedly and from background workers.
func (s *SeatInventory) ReleaseIfUnclaimed(ctx context.Context, seatID uint64) (bool, error) {
	ok, err := s.seats.ReleaseUnclaimed(ctx, seatID)
	if err != nil {
		return false, fmt.Errorf("release unclaimed seat %d: %w", seatID, err)
	}
	return ok, nil
}

// ListUnclaimed returns held seats that no CONFIRMED reservation references.
func (s *SeatInventory) ListUnclaimed(ctx context.Context, limit int) ([]model.Seat, error) {
	return s.seats.ListUnclaimed(ctx, limit)
}
