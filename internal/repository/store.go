package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// FlightRepository persists flights.
type FlightRepository interface {
	Create(ctx context.Context, f *model.Flight) error
	GetByID(ctx context.Context, id uint64) (model.Flight, error)
	// GetForShare is GetByID holding a shared row lock until the
	// transaction ends, so the flight status cannot change under a booking.
	GetForShare(ctx context.Context, id uint64) (model.Flight, error)
	GetByNumber(ctx context.Context, number string) (model.Flight, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, f model.Flight) error
	List(ctx context.Context) ([]model.Flight, error)
	ListByStatus(ctx context.Context, status model.FlightStatus) ([]model.Flight, error)
	// Search returns SCHEDULED flights with at least one AVAILABLE seat
	// whose origin and destination contain the given filters, ignoring
	// case, ordered by departure.
	Search(ctx context.Context, q model.FlightSearch) ([]model.Flight, error)
	// ListScheduledBetween returns SCHEDULED flights departing in
	// [from, to], ordered by departure.  Zero times leave that side of the
	// window open.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error)
	Delete(ctx context.Context, id uint64) error
}

// SeatRepository persists seats.  UpdateStatus is the only way seat status
// changes, and it is always conditional on the current status.
type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []model.Seat) error
	GetByID(ctx context.Context, id uint64) (model.Seat, error)
	ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error)
	ListByFlightAndStatus(ctx context.Context, flightID uint64, status model.SeatStatus) ([]model.Seat, error)
	ListAvailableByClass(ctx context.Context, flightID uint64, class model.CabinClass) ([]model.Seat, error)
	CountByFlightAndStatus(ctx context.Context, flightID uint64, status model.SeatStatus) (int, error)
	// CountAvailableByFlights returns the AVAILABLE seat count per flight id.
	// Flights without a free seat are absent from the map.
	CountAvailableByFlights(ctx context.Context, flightIDs []uint64) (map[uint64]int, error)
	// UpdateStatus sets the seat to `to` only when its current status is one
	// of `from`.  It reports whether a row was changed.
	UpdateStatus(ctx context.Context, id uint64, from []model.SeatStatus, to model.SeatStatus) (bool, error)
	// ReleaseUnclaimed frees a RESERVED or OCCUPIED seat only when no
	// CONFIRMED reservation references it.
	ReleaseUnclaimed(ctx context.Context, id uint64) (bool, error)
	// ListUnclaimed returns non-AVAILABLE seats with no CONFIRMED reservation.
	ListUnclaimed(ctx context.Context, limit int) ([]model.Seat, error)
	DeleteByFlight(ctx context.Context, flightID uint64) (int64, error)
}

// ReservationRepository persists reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	GetByIDAndUser(ctx context.Context, id, userID uint64) (model.Reservation, error)
	// UpdateStatus changes the status only when it currently equals from.
	UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) (bool, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListByUserAndStatus(ctx context.Context, userID uint64, status model.ReservationStatus) ([]model.Reservation, error)
	CountByUserAndStatus(ctx context.Context, userID uint64, status model.ReservationStatus) (int, error)
	ListByFlight(ctx context.Context, flightID uint64) ([]model.Reservation, error)
	ListByFlightAndStatus(ctx context.Context, flightID uint64, status model.ReservationStatus) ([]model.Reservation, error)
	ExistsConfirmedForSeat(ctx context.Context, seatID uint64) (bool, error)
	ExistsConfirmedForUserSeat(ctx context.Context, userID, seatID uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByFlight(ctx context.Context, flightID uint64) (int64, error)
}

// Tx is a set of repositories bound to one unit of work.
type Tx interface {
	Flights() FlightRepository
	Seats() SeatRepository
	Reservations() ReservationRepository
}

// Store exposes repositories outside of a transaction and runs fn inside
// one.  When fn returns an error every change made through the Tx is
// rolled back.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repos binds the MySQL repositories to a querier.
type repos struct {
	flights      *FlightRepo
	seats        *SeatRepo
	reservations *ReservationRepo
}

func newRepos(q querier) repos {
	return repos{
		flights:      &FlightRepo{db: q},
		seats:        &SeatRepo{db: q},
		reservations: &ReservationRepo{db: q},
	}
}

func (r repos) Flights() FlightRepository           { return r.flights }
func (r repos) Seats() SeatRepository               { return r.seats }
func (r repos) Reservations() ReservationRepository { return r.reservations }

// SQLStore is the MySQL backed Store.
type SQLStore struct {
	repos
	db *sql.DB
}

// NewSQLStore returns a Store over db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{repos: newRepos(db), db: db}
}

// DB exposes the underlying pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

// WithTx runs fn in a database transaction and commits when fn succeeds.
func (s *SQLStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
