package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/queue"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
	"github.com/Kipz123/airline-booking-backend/internal/repository/memory"
)

var errInjected = errors.New("injected failure")

var (
	alice = model.Principal{UserID: 1, Role: model.RoleCustomer}
	bob   = model.Principal{UserID: 2, Role: model.RoleCustomer}
)

func createFlight(t *testing.T, store repository.Store, number string, capacity int) model.Flight {
	t.Helper()
	dep := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	f, err := NewFlightCatalog(store).Create(context.Background(), NewFlight{
		FlightNumber: number,
		Origin:       "Nairobi",
		Destination:  "Mombasa",
		DepartureAt:  dep,
		ArrivalAt:    dep.Add(time.Hour),
		SeatCapacity: capacity,
	})
	require.NoError(t, err)
	return f
}

func seatByNumber(t *testing.T, store repository.Store, flightID uint64, number string) model.Seat {
	t.Helper()
	seats, err := store.Seats().ListByFlight(context.Background(), flightID)
	require.NoError(t, err)
	for _, s := range seats {
		if s.SeatNumber == number {
			return s
		}
	}
	t.Fatalf("seat %s not found on flight %d", number, flightID)
	return model.Seat{}
}

// requireSeatsConsistent checks that every seat is AVAILABLE exactly when
// no CONFIRMED reservation references it.
func requireSeatsConsistent(t *testing.T, store repository.Store, flightID uint64) {
	t.Helper()
	ctx := context.Background()
	seats, err := store.Seats().ListByFlight(ctx, flightID)
	require.NoError(t, err)
	for _, s := range seats {
		held, err := store.Reservations().ExistsConfirmedForSeat(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, !held, s.IsAvailable(), "seat %s status %s confirmed=%v", s.SeatNumber, s.Status, held)
	}
}

// faultStore wraps the in-process store and fails chosen steps inside
// transactions.
type faultStore struct {
	*memory.Store
	failReservationCreate bool
	failSeatRelease       bool
}

func (s *faultStore) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx repository.Tx) error {
		return fn(faultTx{Tx: tx, s: s})
	})
}

type faultTx struct {
	repository.Tx
	s *faultStore
}

func (t faultTx) Seats() repository.SeatRepository {
	return faultSeats{SeatRepository: t.Tx.Seats(), fail: t.s.failSeatRelease}
}

func (t faultTx) Reservations() repository.ReservationRepository {
	return faultReservations{ReservationRepository: t.Tx.Reservations(), fail: t.s.failReservationCreate}
}

type faultSeats struct {
	repository.SeatRepository
	fail bool
}

func (f faultSeats) UpdateStatus(ctx context.Context, id uint64, from []model.SeatStatus, to model.SeatStatus) (bool, error) {
	if f.fail && to == model.SeatAvailable {
		return false, errInjected
	}
	return f.SeatRepository.UpdateStatus(ctx, id, from, to)
}

type faultReservations struct {
	repository.ReservationRepository
	fail bool
}

func (f faultReservations) Create(ctx context.Context, r *model.Reservation) error {
	if f.fail {
		return errInjected
	}
	return f.ReservationRepository.Create(ctx, r)
}

// recordingScheduler keeps every scheduled release.
type recordingScheduler struct {
	mu   sync.Mutex
	reqs []queue.SeatReleaseRequest
	err  error
}

func (r *recordingScheduler) ScheduleRelease(_ context.Context, req queue.SeatReleaseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reqs = append(r.reqs, req)
	return nil
}

func (r *recordingScheduler) scheduled() []queue.SeatReleaseRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.SeatReleaseRequest(nil), r.reqs...)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func eventOfType(t queue.ReservationEventType) any {
	return mock.MatchedBy(func(ev queue.ReservationEvent) bool { return ev.Type == t })
}

type failingReleaser struct {
	calls int
	err   error
}

func (f *failingReleaser) ReleaseIfUnclaimed(context.Context, uint64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, fmt.Errorf("releaser: %w", f.err)
	}
	return true, nil
}
