package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// SeatRepo provides data access to the seats table.  Status changes are
// single conditional UPDATE statements; the affected-row count tells the
// caller whether it won.
type SeatRepo struct {
	db querier
}

// NewSeatRepo returns a SeatRepo bound to db.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `s.id, s.flight_id, s.seat_number, s.cabin_class, s.status`

func scanSeat(sc rowScanner) (model.Seat, error) {
	var s model.Seat
	var class, status string
	err := sc.Scan(&s.ID, &s.FlightID, &s.SeatNumber, &class, &status)
	s.CabinClass = model.CabinClass(class)
	s.Status = model.SeatStatus(status)
	return s, err
}

func (r *SeatRepo) querySeats(ctx context.Context, query string, args ...any) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// seatInsertChunk caps the rows of one multi-row INSERT well below the
// MySQL placeholder limit of 65535.
const seatInsertChunk = 500

// CreateBatch inserts seats in multi-row statements of at most
// seatInsertChunk rows.  Passing an empty slice has no effect.
func (r *SeatRepo) CreateBatch(ctx context.Context, seats []model.Seat) error {
	for start := 0; start < len(seats); start += seatInsertChunk {
		end := min(start+seatInsertChunk, len(seats))
		if err := r.insertSeats(ctx, seats[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepo) insertSeats(ctx context.Context, seats []model.Seat) error {
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (flight_id, seat_number, cabin_class, status) VALUES `)
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, s.FlightID, s.SeatNumber, string(s.CabinClass), string(s.Status))
	}
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// GetByID returns the seat or model.ErrSeatNotFound.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	s, err := scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seat{}, model.ErrSeatNotFound
	}
	return s, err
}

// ListByFlight returns all seats of a flight in generation order.
func (r *SeatRepo) ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error) {
	return r.querySeats(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.flight_id = ? ORDER BY s.id`, flightID)
}

// ListByFlightAndStatus returns the seats of a flight in one status.
func (r *SeatRepo) ListByFlightAndStatus(ctx context.Context, flightID uint64, status model.SeatStatus) ([]model.Seat, error) {
	return r.querySeats(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.flight_id = ? AND s.status = ? ORDER BY s.id`, flightID, string(status))
}

// ListAvailableByClass returns AVAILABLE seats of one cabin class.
func (r *SeatRepo) ListAvailableByClass(ctx context.Context, flightID uint64, class model.CabinClass) ([]model.Seat, error) {
	return r.querySeats(ctx,
		`SELECT `+seatColumns+` FROM seats s WHERE s.flight_id = ? AND s.status = 'AVAILABLE' AND s.cabin_class = ? ORDER BY s.id`,
		flightID, string(class))
}

// CountByFlightAndStatus counts the seats of a flight in one status.
func (r *SeatRepo) CountByFlightAndStatus(ctx context.Context, flightID uint64, status model.SeatStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE flight_id = ? AND status = ?`, flightID, string(status)).Scan(&n)
	return n, err
}

// CountAvailableByFlights groups the AVAILABLE seats of the given flights
// by flight in one query.
func (r *SeatRepo) CountAvailableByFlights(ctx context.Context, flightIDs []uint64) (map[uint64]int, error) {
	out := make(map[uint64]int, len(flightIDs))
	if len(flightIDs) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(flightIDs))
	for _, id := range flightIDs {
		args = append(args, id)
	}
	q := `SELECT flight_id, COUNT(*) FROM seats WHERE status = 'AVAILABLE' AND flight_id IN (?` +
		strings.Repeat(", ?", len(flightIDs)-1) + `) GROUP BY flight_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uint64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// UpdateStatus is the compare-and-set primitive for seat status.
func (r *SeatRepo) UpdateStatus(ctx context.Context, id uint64, from []model.SeatStatus, to model.SeatStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	args := make([]any, 0, len(from)+2)
	args = append(args, string(to), id)
	for _, st := range from {
		args = append(args, string(st))
	}
	q := `UPDATE seats SET status = ? WHERE id = ? AND status IN (?` + strings.Repeat(", ?", len(from)-1) + `)`
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseUnclaimed frees a seat that no CONFIRMED reservation holds.  The
// guard and the write are one statement, so a seat booked in the meantime
// is left alone.
func (r *SeatRepo) ReleaseUnclaimed(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE seats s SET s.status = 'AVAILABLE'
		WHERE s.id = ? AND s.status IN ('RESERVED', 'OCCUPIED')
		AND NOT EXISTS (SELECT 1 FROM reservations r WHERE r.seat_id = s.id AND r.status = 'CONFIRMED')`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListUnclaimed returns up to limit seats that are held without a
// CONFIRMED reservation.
func (r *SeatRepo) ListUnclaimed(ctx context.Context, limit int) ([]model.Seat, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.querySeats(ctx, `SELECT `+seatColumns+` FROM seats s
		WHERE s.status IN ('RESERVED', 'OCCUPIED')
		AND NOT EXISTS (SELECT 1 FROM reservations r WHERE r.seat_id = s.id AND r.status = 'CONFIRMED')
		ORDER BY s.id LIMIT ?`, limit)
}

// DeleteByFlight removes all seats of a flight and returns how many were deleted.
func (r *SeatRepo) DeleteByFlight(ctx context.Context, flightID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE flight_id = ?`, flightID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
