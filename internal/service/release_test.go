package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/queue"
	"github.com/Kipz123/airline-booking-backend/internal/repository/memory"
)

func TestReleaseQueueGivesUp(t *testing.T) {
	ctx := context.Background()
	rel := &failingReleaser{err: errInjected}
	q := NewReleaseQueue(rel, 2)
	require.NoError(t, q.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(7, 1, "test")))

	assert.Equal(t, 0, q.Drain(ctx))
	assert.Equal(t, 1, q.Pending())
	assert.Equal(t, 0, q.Drain(ctx))
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, 2, rel.calls)
}

func TestReleaseQueueCollapsesBySeat(t *testing.T) {
	ctx := context.Background()
	rel := &failingReleaser{}
	q := NewReleaseQueue(rel, 3)
	require.NoError(t, q.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(7, 1, "first")))
	require.NoError(t, q.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(7, 2, "second")))
	require.NoError(t, q.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(8, 3, "other")))
	assert.Equal(t, 2, q.Pending())
	assert.Equal(t, 2, q.Drain(ctx))
	assert.Equal(t, 0, q.Pending())
}

func TestReleaseChainFallsThrough(t *testing.T) {
	ctx := context.Background()
	first := &recordingScheduler{err: errors.New("broker down")}
	second := &recordingScheduler{}
	chain := ReleaseChain{nil, first, second}

	require.NoError(t, chain.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(1, 1, "x")))
	assert.Empty(t, first.scheduled())
	assert.Len(t, second.scheduled(), 1)

	assert.Error(t, ReleaseChain{}.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(1, 1, "x")))
	assert.Error(t, ReleaseChain{first}.ScheduleRelease(ctx, queue.NewSeatReleaseRequest(1, 1, "x")))
}

func TestReleaseQueueSkipsRebookedSeat(t *testing.T) {
	ctx := context.Background()
	fs := &faultStore{Store: memory.New()}
	f := createFlight(t, fs, "KQ10", 6)
	seat := seatByNumber(t, fs, f.ID, "A1")
	sched := &recordingScheduler{}
	o := NewBookingOrchestrator(fs, sched, nil)

	r, err := o.Book(ctx, alice, f.ID, seat.ID)
	require.NoError(t, err)
	fs.failSeatRelease = true
	_, err = o.Cancel(ctx, r.ID, alice.UserID)
	require.NoError(t, err)
	require.Len(t, sched.scheduled(), 1)

	// the seat is still RESERVED, so another passenger cannot take it yet;
	// hand it over through the ledger to simulate a later rightful holder
	_, err = NewReservationLedger(fs.Reservations()).Create(ctx, bob.UserID, f.ID, seat.ID)
	require.NoError(t, err)

	q := NewReleaseQueue(NewSeatInventory(fs.Seats()), 3)
	require.NoError(t, q.ScheduleRelease(ctx, sched.scheduled()[0]))
	assert.Equal(t, 1, q.Drain(ctx))
	assert.Equal(t, model.SeatReserved, seatByNumber(t, fs, f.ID, "A1").Status)
	requireSeatsConsistent(t, fs, f.ID)
}

func TestReconcilerSweep(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	o, _ := newOrchestrator(store)
	f := createFlight(t, store, "KQ11", 6)
	held := seatByNumber(t, store, f.ID, "A1")
	orphan := seatByNumber(t, store, f.ID, "B1")

	_, err := o.Book(ctx, alice, f.ID, held.ID)
	require.NoError(t, err)
	ok, err := store.Seats().UpdateStatus(ctx, orphan.ID, model.SeatSources(model.SeatReserved), model.SeatReserved)
	require.NoError(t, err)
	require.True(t, ok)

	r := NewReconciler(NewSeatInventory(store.Seats()), 10)
	n, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.SeatAvailable, seatByNumber(t, store, f.ID, "B1").Status)
	assert.Equal(t, model.SeatReserved, seatByNumber(t, store, f.ID, "A1").Status)
	requireSeatsConsistent(t, store, f.ID)

	n, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduleJobs(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	store := memory.New()
	inv := NewSeatInventory(store.Seats())
	require.NoError(t, ScheduleJobs(s, NewReleaseQueue(inv, 3), NewReconciler(inv, 10), time.Second, time.Minute))
	assert.Len(t, s.Jobs(), 2)

	s2, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s2.Shutdown() }()
	require.NoError(t, ScheduleJobs(s2, NewReleaseQueue(inv, 3), nil, 0, time.Minute))
	assert.Empty(t, s2.Jobs())
}
