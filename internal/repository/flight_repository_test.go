package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

var flightCols = []string{"id", "flight_number", "origin", "destination", "departure_at", "arrival_at", "status", "seat_capacity", "created_at"}

func TestFlightRepo_Create(t *testing.T) {
	store, mock := newMock(t)
	dep := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	f := &model.Flight{FlightNumber: "KQ100", Origin: "Nairobi", Destination: "Lagos",
		DepartureAt: dep, ArrivalAt: dep.Add(5 * time.Hour), Status: model.FlightScheduled, SeatCapacity: 12}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flights")).
		WithArgs("KQ100", "Nairobi", "Lagos", dep, dep.Add(5*time.Hour), "SCHEDULED", 12, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(77, 1))

	require.NoError(t, store.Flights().Create(context.Background(), f))
	assert.Equal(t, uint64(77), f.ID)
	assert.False(t, f.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_Create_Duplicate(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flights")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'KQ100'"})

	err := store.Flights().Create(context.Background(), &model.Flight{FlightNumber: "KQ100"})
	assert.ErrorIs(t, err, model.ErrDuplicateFlightNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_GetByID(t *testing.T) {
	store, mock := newMock(t)
	dep := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights f WHERE f.id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(flightCols).
			AddRow(3, "KQ100", "Nairobi", "Lagos", dep, dep.Add(time.Hour), "CANCELLED", 6, dep.Add(-time.Hour)))

	f, err := store.Flights().GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "KQ100", f.FlightNumber)
	assert.Equal(t, model.FlightCancelled, f.Status)
	assert.False(t, f.Bookable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_GetByID_NotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights f WHERE f.id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(flightCols))

	_, err := store.Flights().GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, model.ErrFlightNotFound)
}

func TestFlightRepo_Search_BuildsFilters(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE f.status = 'SCHEDULED' AND EXISTS (SELECT 1 FROM seats s WHERE s.flight_id = f.id AND s.status = 'AVAILABLE') AND LOWER(f.origin) LIKE ? ORDER BY f.departure_at, f.id")).
		WithArgs("%nai%").
		WillReturnRows(sqlmock.NewRows(flightCols))

	out, err := store.Flights().Search(context.Background(), model.FlightSearch{Origin: " NAI "})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_Search_BothFieldsEscaped(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("AND LOWER(f.origin) LIKE ? AND LOWER(f.destination) LIKE ?")).
		WithArgs(`%100\%%`, "%lag%").
		WillReturnRows(sqlmock.NewRows(flightCols))

	_, err := store.Flights().Search(context.Background(), model.FlightSearch{Origin: "100%", Destination: "Lag"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_Delete_NotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM flights WHERE id = ?")).
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.Flights().Delete(context.Background(), 8), model.ErrFlightNotFound)
}

func TestReservationRepo_Create_SecondActiveIsUnavailable(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_reservations_active_seat'"})

	err := store.Reservations().Create(context.Background(), &model.Reservation{UserID: 1, FlightID: 1, SeatID: 1, Status: model.ReservationConfirmed})
	assert.ErrorIs(t, err, model.ErrSeatUnavailable)
}

func TestReservationRepo_UpdateStatus(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ? WHERE id = ? AND status = ?")).
		WithArgs("CANCELLED", uint64(4), "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := store.Reservations().UpdateStatus(context.Background(), 4, model.ReservationConfirmed, model.ReservationCancelled)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_GetByIDAndUser_NotOwned(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ? AND r.user_id = ?")).
		WithArgs(uint64(4), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "flight_id", "seat_id", "status", "created_at"}))

	_, err := store.Reservations().GetByIDAndUser(context.Background(), 4, 9)
	assert.ErrorIs(t, err, model.ErrReservationNotFound)
}

func TestFlightRepo_GetForShare_LocksRow(t *testing.T) {
	store, mock := newMock(t)
	dep := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights f WHERE f.id = ? FOR SHARE")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(flightCols).
			AddRow(4, "KQ104", "Nairobi", "Lagos", dep, dep.Add(time.Hour), "SCHEDULED", 6, dep))

	f, err := store.Flights().GetForShare(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, f.Bookable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepo_ListScheduledBetween_NoSeatFilter(t *testing.T) {
	store, mock := newMock(t)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights f WHERE f.status = 'SCHEDULED' AND f.departure_at >= ? ORDER BY f.departure_at, f.id")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows(flightCols))

	got, err := store.Flights().ListScheduledBetween(context.Background(), from, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
