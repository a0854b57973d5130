// Package memory is an in-process implementation of the repository
// contracts.  A single mutex serialises every operation and each WithTx
// runs under that mutex against a snapshot it restores on error, so
// transactions are serializable.  It backs local runs (STORE_DRIVER=memory)
// and the service tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
)

// errForeignKey mirrors the MySQL foreign key failure raised when a flight
// is deleted while rows still reference it.
var errForeignKey = errors.New("memory: flight still referenced by seats or reservations")

type state struct {
	flightSeq, seatSeq, reservationSeq, userSeq uint64

	flights      map[uint64]model.Flight
	seats        map[uint64]model.Seat
	reservations map[uint64]model.Reservation
	users        map[uint64]model.User
	tokens       map[string]model.RefreshToken
}

func newState() *state {
	return &state{
		flights:      map[uint64]model.Flight{},
		seats:        map[uint64]model.Seat{},
		reservations: map[uint64]model.Reservation{},
		users:        map[uint64]model.User{},
		tokens:       map[string]model.RefreshToken{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.flights = make(map[uint64]model.Flight, len(s.flights))
	for k, v := range s.flights {
		c.flights[k] = v
	}
	c.seats = make(map[uint64]model.Seat, len(s.seats))
	for k, v := range s.seats {
		c.seats[k] = v
	}
	c.reservations = make(map[uint64]model.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	c.users = make(map[uint64]model.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.tokens = make(map[string]model.RefreshToken, len(s.tokens))
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return &c
}

// Store is the in-process repository.Store.  The zero value is not usable;
// call New.
type Store struct {
	mu sync.Mutex
	st *state
}

// New returns an empty Store.
func New() *Store { return &Store{st: newState()} }

// view runs repository calls either under the store mutex or, inside
// WithTx, with the mutex already held.
type view struct {
	store *Store
	inTx  bool
}

func (v view) run(fn func(st *state) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.st)
}

func (v view) Flights() repository.FlightRepository           { return flightRepo{v} }
func (v view) Seats() repository.SeatRepository               { return seatRepo{v} }
func (v view) Reservations() repository.ReservationRepository { return reservationRepo{v} }

func (s *Store) Flights() repository.FlightRepository           { return flightRepo{view{store: s}} }
func (s *Store) Seats() repository.SeatRepository               { return seatRepo{view{store: s}} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{view{store: s}} }

// Users returns the account repository.
func (s *Store) Users() repository.UserRepository { return userRepo{view{store: s}} }

// Tokens returns the refresh token repository.
func (s *Store) Tokens() repository.TokenRepository { return tokenRepo{view{store: s}} }

// WithTx runs fn with exclusive access to the store and discards all of
// its changes when it returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(view{store: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}
