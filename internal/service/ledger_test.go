package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository/memory"
)

func TestLedgerReads(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	f := createFlight(t, store, "KQ400", 6)
	ledger := NewReservationLedger(store.Reservations())

	a1 := seatByNumber(t, store, f.ID, "A1")
	b1 := seatByNumber(t, store, f.ID, "B1")

	r1, err := ledger.Create(ctx, alice.UserID, f.ID, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, r1.Status)
	assert.False(t, r1.CreatedAt.IsZero())
	r2, err := ledger.Create(ctx, alice.UserID, f.ID, b1.ID)
	require.NoError(t, err)
	_, err = ledger.Create(ctx, bob.UserID, f.ID, seatByNumber(t, store, f.ID, "C1").ID)
	require.NoError(t, err)

	_, err = ledger.Cancel(ctx, r2.ID, alice.UserID)
	require.NoError(t, err)

	mine, err := ledger.ListByUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	confirmed, err := ledger.ListConfirmedByUser(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, r1.ID, confirmed[0].ID)

	n, err := ledger.CountConfirmedByUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byFlight, err := ledger.ListByFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, byFlight, 3)
	confirmedByFlight, err := ledger.ListConfirmedByFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, confirmedByFlight, 2)

	all, err := ledger.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	held, err := ledger.ExistsConfirmedForSeat(ctx, b1.ID)
	require.NoError(t, err)
	assert.False(t, held)
	held, err = ledger.HasReservationForSeat(ctx, alice.UserID, a1.ID)
	require.NoError(t, err)
	assert.True(t, held)
	held, err = ledger.HasReservationForSeat(ctx, bob.UserID, a1.ID)
	require.NoError(t, err)
	assert.False(t, held)

	_, err = ledger.GetForUser(ctx, r1.ID, bob.UserID)
	require.ErrorIs(t, err, model.ErrReservationNotFound)
	got, err := ledger.GetForUser(ctx, r1.ID, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, a1.ID, got.SeatID)
}

func TestLedgerCancel(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	f := createFlight(t, store, "KQ401", 6)
	ledger := NewReservationLedger(store.Reservations())
	r, err := ledger.Create(ctx, alice.UserID, f.ID, seatByNumber(t, store, f.ID, "A1").ID)
	require.NoError(t, err)

	_, err = ledger.Cancel(ctx, r.ID, bob.UserID)
	require.ErrorIs(t, err, model.ErrReservationNotFound)
	_, err = ledger.Cancel(ctx, 9999, alice.UserID)
	require.ErrorIs(t, err, model.ErrReservationNotFound)

	got, err := ledger.Cancel(ctx, r.ID, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, got.Status)

	again, err := ledger.Cancel(ctx, r.ID, alice.UserID)
	require.ErrorIs(t, err, model.ErrAlreadyCancelled)
	assert.Equal(t, model.ReservationCancelled, again.Status)

	require.NoError(t, ledger.Delete(ctx, r.ID))
	_, err = ledger.Get(ctx, r.ID)
	require.ErrorIs(t, err, model.ErrReservationNotFound)
}
