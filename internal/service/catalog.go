package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
)

// NewFlight carries the fields of a flight to create.
type NewFlight struct {
	FlightNumber string
	Origin       string
	Destination  string
	DepartureAt  time.Time
	ArrivalAt    time.Time
	SeatCapacity int
}

// FlightAvailability is a flight together with its free seat count.
type FlightAvailability struct {
	model.Flight
	AvailableSeats int `json:"available_seats"`
}

// FlightCatalog owns flights and their seat pools.
type FlightCatalog struct {
	store repository.Store
}

// NewFlightCatalog returns a catalog over store.
func NewFlightCatalog(store repository.Store) *FlightCatalog {
	return &FlightCatalog{store: store}
}

// Create checks the flight number, schedule, route and capacity in that order,
// then writes the flight and its full seat pool in one transaction.  On any
// error nothing is persisted.
func (c *FlightCatalog) Create(ctx context.Context, nf NewFlight) (model.Flight, error) {
	f := model.Flight{
		FlightNumber: strings.ToUpper(strings.TrimSpace(nf.FlightNumber)),
		Origin:       strings.TrimSpace(nf.Origin),
		Destination:  strings.TrimSpace(nf.Destination),
		DepartureAt:  nf.DepartureAt.UTC(),
		ArrivalAt:    nf.ArrivalAt.UTC(),
		Status:       model.FlightScheduled,
		SeatCapacity: nf.SeatCapacity,
		CreatedAt:    time.Now().UTC(),
	}
	err := c.store.WithTx(ctx, func(tx repository.Tx) error {
		exists, err := tx.Flights().ExistsByNumber(ctx, f.FlightNumber)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrDuplicateFlightNumber
		}
		if err := model.ValidateSchedule(f.DepartureAt, f.ArrivalAt); err != nil {
			return err
		}
		if err := model.ValidateRoute(f.Origin, f.Destination); err != nil {
			return err
		}
		if f.SeatCapacity <= 0 || f.SeatCapacity > model.MaxSeatCapacity {
			return model.ErrInvalidCapacity
		}
		if err := tx.Flights().Create(ctx, &f); err != nil {
			return err
		}
		seats, err := model.GenerateSeatPool(f.ID, f.SeatCapacity)
		if err != nil {
			return err
		}
		return tx.Seats().CreateBatch(ctx, seats)
	})
	if err != nil {
		return model.Flight{}, fmt.Errorf("create flight %s: %w", f.FlightNumber, err)
	}
	return f, nil
}

// Update applies a partial change to the schedule or route.  Seats and
// reservations are not touched.
func (c *FlightCatalog) Update(ctx context.Context, id uint64, patch model.FlightPatch) (model.Flight, error) {
	var out model.Flight
	err := c.store.WithTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.Flights().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return err
		}
		if err := tx.Flights().Update(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Flight{}, fmt.Errorf("update flight %d: %w", id, err)
	}
	return out, nil
}

// Cancel sets the flight CANCELLED.  Cancelling a cancelled flight
// succeeds.  Existing reservations and seats keep their state.
func (c *FlightCatalog) Cancel(ctx context.Context, id uint64) (model.Flight, error) {
	var out model.Flight
	err := c.store.WithTx(ctx, func(tx repository.Tx) error {
		f, err := tx.Flights().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if f.Status == model.FlightCancelled {
			out = f
			return nil
		}
		f.Status = f.Cancel()
		if err := tx.Flights().Update(ctx, f); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return model.Flight{}, fmt.Errorf("cancel flight %d: %w", id, err)
	}
	return out, nil
}

// Delete removes the flight with its seats and reservations, in that
// order: seats, reservations, flight.  All three deletes share one
// transaction.
func (c *FlightCatalog) Delete(ctx context.Context, id uint64) error {
	err := c.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Flights().GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := tx.Seats().DeleteByFlight(ctx, id); err != nil {
			return err
		}
		if _, err := tx.Reservations().DeleteByFlight(ctx, id); err != nil {
			return err
		}
		return tx.Flights().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete flight %d: %w", id, err)
	}
	return nil
}

func (c *FlightCatalog) Get(ctx context.Context, id uint64) (model.Flight, error) {
	return c.store.Flights().GetByID(ctx, id)
}

func (c *FlightCatalog) GetByNumber(ctx context.Context, number string) (model.Flight, error) {
	return c.store.Flights().GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

// GetWithAvailability returns the flight and its current free seat count.
func (c *FlightCatalog) GetWithAvailability(ctx context.Context, id uint64) (FlightAvailability, error) {
	f, err := c.Get(ctx, id)
	if err != nil {
		return FlightAvailability{}, err
	}
	n, err := c.store.Seats().CountByFlightAndStatus(ctx, id, model.SeatAvailable)
	if err != nil {
		return FlightAvailability{}, err
	}
	return FlightAvailability{Flight: f, AvailableSeats: n}, nil
}

func (c *FlightCatalog) List(ctx context.Context) ([]model.Flight, error) {
	return c.store.Flights().List(ctx)
}

func (c *FlightCatalog) ListByStatus(ctx context.Context, status model.FlightStatus) ([]model.Flight, error) {
	return c.store.Flights().ListByStatus(ctx, status)
}

// Search returns bookable flights matching the optional origin and
// destination substrings, earliest departure first.
func (c *FlightCatalog) Search(ctx context.Context, q model.FlightSearch) ([]model.Flight, error) {
	return c.store.Flights().Search(ctx, q)
}

// ListBookable returns every SCHEDULED flight with a free seat.
func (c *FlightCatalog) ListBookable(ctx context.Context) ([]model.Flight, error) {
	return c.store.Flights().Search(ctx, model.FlightSearch{})
}

// ListDepartingBetween returns SCHEDULED flights departing inside
// [from, to], sold-out ones included.
func (c *FlightCatalog) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, model.ErrInvalidSchedule
	}
	return c.store.Flights().ListScheduledBetween(ctx, from, to)
}

// WithAvailability pairs each flight with its free seat count, read in one
// query for the whole list.
func (c *FlightCatalog) WithAvailability(ctx context.Context, flights []model.Flight) ([]FlightAvailability, error) {
	ids := make([]uint64, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
	}
	counts, err := c.store.Seats().CountAvailableByFlights(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count available seats: %w", err)
	}
	out := make([]FlightAvailability, 0, len(flights))
	for _, f := range flights {
		out = append(out, FlightAvailability{Flight: f, AvailableSeats: counts[f.ID]})
	}
	return out, nil
}

// HasAvailableSeats reports whether the flight has at least one free seat.
func (c *FlightCatalog) HasAvailableSeats(ctx context.Context, id uint64) (bool, error) {
	n, err := c.store.Seats().CountByFlightAndStatus(ctx, id, model.SeatAvailable)
	return n > 0, err
}
