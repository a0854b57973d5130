package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

func newMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db), mock
}

func TestSeatRepo_UpdateStatus_ConditionalOnSource(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = ? WHERE id = ? AND status IN (?)")).
		WithArgs("RESERVED", uint64(5), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := store.Seats().UpdateStatus(ctx, 5, []model.SeatStatus{model.SeatAvailable}, model.SeatReserved)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_UpdateStatus_LostRace(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = ? WHERE id = ? AND status IN (?)")).
		WithArgs("RESERVED", uint64(5), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.Seats().UpdateStatus(context.Background(), 5, []model.SeatStatus{model.SeatAvailable}, model.SeatReserved)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_UpdateStatus_MultipleSources(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = ? WHERE id = ? AND status IN (?, ?)")).
		WithArgs("AVAILABLE", uint64(9), "RESERVED", "OCCUPIED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := store.Seats().UpdateStatus(context.Background(), 9, model.SeatSources(model.SeatAvailable), model.SeatAvailable)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_ReleaseUnclaimed(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`UPDATE seats s SET s.status = 'AVAILABLE' WHERE s.id = \? AND s.status IN \('RESERVED', 'OCCUPIED'\) AND NOT EXISTS`).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.Seats().ReleaseUnclaimed(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_GetByID_NotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM seats s WHERE s.id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "flight_id", "seat_number", "cabin_class", "status"}))

	_, err := store.Seats().GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrSeatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_CreateBatch(t *testing.T) {
	store, mock := newMock(t)
	seats, err := model.GenerateSeatPool(11, 2)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats (flight_id, seat_number, cabin_class, status) VALUES (?, ?, ?, ?),(?, ?, ?, ?)")).
		WithArgs(uint64(11), "A1", "FIRST", "AVAILABLE", uint64(11), "B1", "FIRST", "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(1, 2))

	require.NoError(t, store.Seats().CreateBatch(context.Background(), seats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_CreateBatch_Chunks(t *testing.T) {
	store, mock := newMock(t)
	seats, err := model.GenerateSeatPool(11, seatInsertChunk+1)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats")).
		WillReturnResult(sqlmock.NewResult(1, seatInsertChunk))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats (flight_id, seat_number, cabin_class, status) VALUES (?, ?, ?, ?)")).
		WithArgs(uint64(11), seats[seatInsertChunk].SeatNumber, sqlmock.AnyArg(), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(501, 1))

	require.NoError(t, store.Seats().CreateBatch(context.Background(), seats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_CountAvailableByFlights(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT flight_id, COUNT(*) FROM seats WHERE status = 'AVAILABLE' AND flight_id IN (?, ?) GROUP BY flight_id")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "count"}).AddRow(1, 5))

	counts, err := store.Seats().CountAvailableByFlights(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 5, counts[1])
	assert.Equal(t, 0, counts[2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_CountAvailableByFlights_Empty(t *testing.T) {
	store, mock := newMock(t)

	counts, err := store.Seats().CountAvailableByFlights(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_ListByFlight(t *testing.T) {
	store, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "flight_id", "seat_number", "cabin_class", "status"}).
		AddRow(1, 2, "A1", "FIRST", "AVAILABLE").
		AddRow(2, 2, "B1", "FIRST", "RESERVED")
	mock.ExpectQuery(regexp.QuoteMeta("FROM seats s WHERE s.flight_id = ? ORDER BY s.id")).
		WithArgs(uint64(2)).
		WillReturnRows(rows)

	seats, err := store.Seats().ListByFlight(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, model.SeatReserved, seats[1].Status)
	assert.Equal(t, model.CabinFirst, seats[0].CabinClass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_WithTx_RollsBackOnError(t *testing.T) {
	store, mock := newMock(t)
	boom := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = ? WHERE id = ? AND status IN (?)")).
		WithArgs("RESERVED", uint64(1), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithTx(context.Background(), func(tx Tx) error {
		if _, err := tx.Seats().UpdateStatus(context.Background(), 1, []model.SeatStatus{model.SeatAvailable}, model.SeatReserved); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_WithTx_Commits(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seats WHERE flight_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(tx Tx) error {
		n, err := tx.Seats().DeleteByFlight(context.Background(), 4)
		assert.Equal(t, int64(6), n)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
