package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

// FlightRepo provides data access to the flights table.
type FlightRepo struct {
	db querier
}

// NewFlightRepo returns a FlightRepo bound to db.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

const flightColumns = `f.id, f.flight_number, f.origin, f.destination, f.departure_at, f.arrival_at, f.status, f.seat_capacity, f.created_at`

// availableSeatExists keeps only flights that still have a free seat.
const availableSeatExists = `EXISTS (SELECT 1 FROM seats s WHERE s.flight_id = f.id AND s.status = 'AVAILABLE')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(sc rowScanner) (model.Flight, error) {
	var f model.Flight
	var status string
	err := sc.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureAt, &f.ArrivalAt, &status, &f.SeatCapacity, &f.CreatedAt)
	f.Status = model.FlightStatus(status)
	return f, err
}

func (r *FlightRepo) queryFlights(ctx context.Context, query string, args ...any) ([]model.Flight, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Flight{}
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts f and sets its ID and CreatedAt.  A duplicate flight
// number yields model.ErrDuplicateFlightNumber.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO flights (flight_number, origin, destination, departure_at, arrival_at, status, seat_capacity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		f.FlightNumber, f.Origin, f.Destination, f.DepartureAt.UTC(), f.ArrivalAt.UTC(), string(f.Status), f.SeatCapacity, f.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.ErrDuplicateFlightNumber
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID returns the flight or model.ErrFlightNotFound.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flight{}, model.ErrFlightNotFound
	}
	return f, err
}

// GetForShare reads the flight with FOR SHARE.  It must run inside a
// transaction to have any effect.
func (r *FlightRepo) GetForShare(ctx context.Context, id uint64) (model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.id = ? FOR SHARE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flight{}, model.ErrFlightNotFound
	}
	return f, err
}

// GetByNumber returns the flight with the given number or model.ErrFlightNotFound.
func (r *FlightRepo) GetByNumber(ctx context.Context, number string) (model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.flight_number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flight{}, model.ErrFlightNotFound
	}
	return f, err
}

// ExistsByNumber reports whether a flight with number exists.
func (r *FlightRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights WHERE flight_number = ?`, number).Scan(&n)
	return n > 0, err
}

// Update writes the mutable columns of f.  Flight number, capacity and
// creation time never change.
func (r *FlightRepo) Update(ctx context.Context, f model.Flight) error {
	const q = `UPDATE flights SET origin = ?, destination = ?, departure_at = ?, arrival_at = ?, status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Origin, f.Destination, f.DepartureAt.UTC(), f.ArrivalAt.UTC(), string(f.Status), f.ID)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when the values are unchanged, so only
	// a missing row is an error.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

// List returns every flight ordered by departure.
func (r *FlightRepo) List(ctx context.Context) ([]model.Flight, error) {
	return r.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights f ORDER BY f.departure_at, f.id`)
}

// ListByStatus returns flights with the given status ordered by departure.
func (r *FlightRepo) ListByStatus(ctx context.Context, status model.FlightStatus) ([]model.Flight, error) {
	return r.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.status = ? ORDER BY f.departure_at, f.id`, string(status))
}

// Search matches origin and destination as case-insensitive substrings.
func (r *FlightRepo) Search(ctx context.Context, q model.FlightSearch) ([]model.Flight, error) {
	where, args := bookableWhere(q)
	return r.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights f WHERE `+strings.Join(where, " AND ")+` ORDER BY f.departure_at, f.id`, args...)
}

// ListScheduledBetween returns SCHEDULED flights departing within [from, to].
func (r *FlightRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error) {
	where := []string{"f.status = 'SCHEDULED'"}
	args := []any{}
	if !from.IsZero() {
		where = append(where, "f.departure_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, "f.departure_at <= ?")
		args = append(args, to.UTC())
	}
	return r.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights f WHERE `+strings.Join(where, " AND ")+` ORDER BY f.departure_at, f.id`, args...)
}

func bookableWhere(q model.FlightSearch) ([]string, []any) {
	where := []string{"f.status = 'SCHEDULED'", availableSeatExists}
	args := []any{}
	if s := strings.TrimSpace(q.Origin); s != "" {
		where = append(where, "LOWER(f.origin) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if s := strings.TrimSpace(q.Destination); s != "" {
		where = append(where, "LOWER(f.destination) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	return where, args
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Delete removes the flight row.  Seats and reservations must already be
// gone; see the flight catalog for the full sequence.
func (r *FlightRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrFlightNotFound
	}
	return nil
}
