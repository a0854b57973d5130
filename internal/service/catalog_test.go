package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository/memory"
)

func TestCreateFlightSeatPool(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	f := createFlight(t, store, "kq101", 12)
	assert.Equal(t, "KQ101", f.FlightNumber)
	assert.Equal(t, model.FlightScheduled, f.Status)

	seats, err := store.Seats().ListByFlight(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, seats, 12)
	numbers := map[string]bool{}
	for _, s := range seats {
		assert.False(t, numbers[s.SeatNumber], "duplicate seat %s", s.SeatNumber)
		numbers[s.SeatNumber] = true
		assert.Equal(t, model.CabinFirst, s.CabinClass)
	}
	for _, n := range []string{"A1", "F1", "A2", "F2"} {
		assert.True(t, numbers[n], n)
	}

	avail, err := NewFlightCatalog(store).GetWithAvailability(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, avail.AvailableSeats)
}

func TestCreateFlightRejectsAndPersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	dep := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		nf   NewFlight
		want error
	}{
		{"arrival equals departure", NewFlight{FlightNumber: "X1", Origin: "A", Destination: "B", DepartureAt: dep, ArrivalAt: dep, SeatCapacity: 6}, model.ErrInvalidSchedule},
		{"arrival before departure", NewFlight{FlightNumber: "X2", Origin: "A", Destination: "B", DepartureAt: dep, ArrivalAt: dep.Add(-time.Minute), SeatCapacity: 6}, model.ErrInvalidSchedule},
		{"zero capacity", NewFlight{FlightNumber: "X3", Origin: "A", Destination: "B", DepartureAt: dep, ArrivalAt: dep.Add(time.Hour)}, model.ErrInvalidCapacity},
		{"capacity over limit", NewFlight{FlightNumber: "X4", Origin: "A", Destination: "B", DepartureAt: dep, ArrivalAt: dep.Add(time.Hour), SeatCapacity: model.MaxSeatCapacity + 1}, model.ErrInvalidCapacity},
		{"blank origin", NewFlight{FlightNumber: "X5", Origin: "  ", Destination: "B", DepartureAt: dep, ArrivalAt: dep.Add(time.Hour), SeatCapacity: 6}, model.ErrInvalidRoute},
		{"blank destination", NewFlight{FlightNumber: "X6", Origin: "A", Destination: "\t", DepartureAt: dep, ArrivalAt: dep.Add(time.Hour), SeatCapacity: 6}, model.ErrInvalidRoute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Create(ctx, tc.nf)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	flights, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, flights)
	unclaimed, err := store.Seats().ListUnclaimed(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, unclaimed)
}

func TestCreateFlightDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	createFlight(t, store, "KQ1", 6)
	_, err := NewFlightCatalog(store).Create(ctx, NewFlight{FlightNumber: "kq1", SeatCapacity: 6})
	// the number check runs before the schedule check
	assert.ErrorIs(t, err, model.ErrDuplicateFlightNumber)
}

func TestUpdateFlight(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	f := createFlight(t, store, "KQ2", 6)

	dest := "Kisumu"
	got, err := c.Update(ctx, f.ID, model.FlightPatch{Destination: &dest})
	require.NoError(t, err)
	assert.Equal(t, "Kisumu", got.Destination)
	assert.Equal(t, f.DepartureAt, got.DepartureAt)

	early := f.DepartureAt.Add(-time.Hour)
	_, err = c.Update(ctx, f.ID, model.FlightPatch{ArrivalAt: &early})
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)

	blank := "   "
	_, err = c.Update(ctx, f.ID, model.FlightPatch{Origin: &blank})
	assert.ErrorIs(t, err, model.ErrInvalidRoute)

	stored, err := c.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nairobi", stored.Origin)
	assert.Equal(t, "Kisumu", stored.Destination)
	assert.Equal(t, f.ArrivalAt, stored.ArrivalAt)
}

func TestCancelFlightKeepsReservations(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	o, _ := newOrchestrator(store)
	f := createFlight(t, store, "KQ3", 6)
	seat := seatByNumber(t, store, f.ID, "A1")
	r, err := o.Book(ctx, alice, f.ID, seat.ID)
	require.NoError(t, err)

	got, err := c.Cancel(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FlightCancelled, got.Status)
	_, err = c.Cancel(ctx, f.ID)
	assert.NoError(t, err)

	stored, err := store.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, stored.Status)
	assert.Equal(t, model.SeatReserved, seatByNumber(t, store, f.ID, "A1").Status)

	search, err := c.Search(ctx, model.FlightSearch{})
	require.NoError(t, err)
	assert.Empty(t, search)
}

func TestDeleteFlightCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	o, _ := newOrchestrator(store)
	f := createFlight(t, store, "KQ4", 6)
	keep := createFlight(t, store, "KQ5", 6)
	_, err := o.Book(ctx, alice, f.ID, seatByNumber(t, store, f.ID, "A1").ID)
	require.NoError(t, err)
	_, err = o.Book(ctx, alice, keep.ID, seatByNumber(t, store, keep.ID, "A1").ID)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, f.ID))

	_, err = c.Get(ctx, f.ID)
	assert.ErrorIs(t, err, model.ErrFlightNotFound)
	seats, err := store.Seats().ListByFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, seats)
	res, err := store.Reservations().ListByFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = store.Reservations().ListByFlight(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	assert.ErrorIs(t, c.Delete(ctx, f.ID), model.ErrFlightNotFound)
}

func TestSearchFlights(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	o, _ := newOrchestrator(store)
	full := createFlight(t, store, "KQ6", 1)
	open := createFlight(t, store, "KQ7", 6)
	_, err := o.Book(ctx, alice, full.ID, seatByNumber(t, store, full.ID, "A1").ID)
	require.NoError(t, err)

	got, err := c.Search(ctx, model.FlightSearch{Origin: "nair", Destination: "MOMB"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)

	got, err = c.Search(ctx, model.FlightSearch{Origin: "Lagos"})
	require.NoError(t, err)
	assert.Empty(t, got)

	ok, err := c.HasAvailableSeats(ctx, full.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.ListDepartingBetween(ctx, open.DepartureAt, open.DepartureAt.Add(-time.Hour))
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)
	// the window lists sold-out flights too, only cancelled ones drop out
	got, err = c.ListDepartingBetween(ctx, open.DepartureAt.Add(-time.Hour), open.DepartureAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	_, err = c.Cancel(ctx, open.ID)
	require.NoError(t, err)
	got, err = c.ListDepartingBetween(ctx, open.DepartureAt.Add(-time.Hour), open.DepartureAt.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, full.ID, got[0].ID)
	got, err = c.ListDepartingBetween(ctx, open.DepartureAt.Add(time.Minute), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWithAvailability(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewFlightCatalog(store)
	o, _ := newOrchestrator(store)
	full := createFlight(t, store, "KQ8", 1)
	open := createFlight(t, store, "KQ9", 6)
	_, err := o.Book(ctx, alice, full.ID, seatByNumber(t, store, full.ID, "A1").ID)
	require.NoError(t, err)
	_, err = o.Book(ctx, bob, open.ID, seatByNumber(t, store, open.ID, "A1").ID)
	require.NoError(t, err)

	flights, err := c.List(ctx)
	require.NoError(t, err)
	got, err := c.WithAvailability(ctx, flights)
	require.NoError(t, err)
	require.Len(t, got, 2)
	counts := map[uint64]int{}
	for _, f := range got {
		counts[f.ID] = f.AvailableSeats
	}
	assert.Equal(t, map[uint64]int{full.ID: 0, open.ID: 5}, counts)

	none, err := c.WithAvailability(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
