package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// ReservationRepo provides data access to the reservations table.
type ReservationRepo struct {
	db querier
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.user_id, r.flight_id, r.seat_id, r.status, r.created_at`

func scanReservation(sc rowScanner) (model.Reservation, error) {
	var res model.Reservation
	var status string
	err := sc.Scan(&res.ID, &res.UserID, &res.FlightID, &res.SeatID, &status, &res.CreatedAt)
	res.Status = model.ReservationStatus(status)
	return res, err
}

func (r *ReservationRepo) queryReservations(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create inserts res and sets its ID.  The unique index on the active seat
// column turns a second CONFIRMED reservation for one seat into
// model.ErrSeatUnavailable.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO reservations (user_id, flight_id, seat_id, status, created_at) VALUES (?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q, res.UserID, res.FlightID, res.SeatID, string(res.Status), res.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.ErrSeatUnavailable
		}
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID returns the reservation or model.ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, model.ErrReservationNotFound
	}
	return res, err
}

// GetByIDAndUser returns the reservation only when it belongs to userID.
func (r *ReservationRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ? AND r.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, model.ErrReservationNotFound
	}
	return res, err
}

// UpdateStatus moves a reservation from one status to another.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns every reservation, newest first.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations r ORDER BY r.created_at DESC, r.id DESC`)
}

// ListByUser returns the reservations of a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC`, userID)
}

// ListByUserAndStatus filters ListByUser by status.
func (r *ReservationRepo) ListByUserAndStatus(ctx context.Context, userID uint64, status model.ReservationStatus) ([]model.Reservation, error) {
	return r.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.user_id = ? AND r.status = ? ORDER BY r.created_at DESC, r.id DESC`,
		userID, string(status))
}

// CountByUserAndStatus counts a user's reservations in one status.
func (r *ReservationRepo) CountByUserAndStatus(ctx context.Context, userID uint64, status model.ReservationStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ? AND status = ?`, userID, string(status)).Scan(&n)
	return n, err
}

// ListByFlight returns all reservations of a flight.
func (r *ReservationRepo) ListByFlight(ctx context.Context, flightID uint64) ([]model.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.flight_id = ? ORDER BY r.id`, flightID)
}

// ListByFlightAndStatus filters ListByFlight by status.
func (r *ReservationRepo) ListByFlightAndStatus(ctx context.Context, flightID uint64, status model.ReservationStatus) ([]model.Reservation, error) {
	return r.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.flight_id = ? AND r.status = ? ORDER BY r.id`, flightID, string(status))
}

// ExistsConfirmedForSeat reports whether a CONFIRMED reservation holds the seat.
func (r *ReservationRepo) ExistsConfirmedForSeat(ctx context.Context, seatID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE seat_id = ? AND status = 'CONFIRMED'`, seatID).Scan(&n)
	return n > 0, err
}

// ExistsConfirmedForUserSeat reports whether userID holds the seat.
func (r *ReservationRepo) ExistsConfirmedForUserSeat(ctx context.Context, userID, seatID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id = ? AND seat_id = ? AND status = 'CONFIRMED'`, userID, seatID).Scan(&n)
	return n > 0, err
}

// Delete hard-deletes one reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrReservationNotFound
	}
	return nil
}

// DeleteByFlight removes all reservations of a flight.
func (r *ReservationRepo) DeleteByFlight(ctx context.Context, flightID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE flight_id = ?`, flightID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
