package model

import (
	"strings"
	"time"
)

// ReservationStatus is the state of a reservation.  Reservations are
// created CONFIRMED and may only become CANCELLED.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// ParseReservationStatus normalises s and reports whether it names a known status.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ReservationConfirmed, ReservationCancelled:
		return st, true
	}
	return "", false
}

// Cancel moves CONFIRMED to CANCELLED.  A cancelled reservation yields
// ErrAlreadyCancelled.
func (st ReservationStatus) Cancel() (ReservationStatus, error) {
	if st != ReservationConfirmed {
		return st, ErrAlreadyCancelled
	}
	return ReservationCancelled, nil
}

// Reservation mirrors the `reservations` table.
type Reservation struct {
	ID        uint64            `json:"id"`         // reservations.id
	UserID    uint64            `json:"user_id"`    // reservations.user_id
	FlightID  uint64            `json:"flight_id"`  // reservations.flight_id, equals the seat's flight
	SeatID    uint64            `json:"seat_id"`    // reservations.seat_id
	Status    ReservationStatus `json:"status"`     // reservations.status
	CreatedAt time.Time         `json:"created_at"` // reservations.created_at
}

// Active reports whether the reservation currently holds its seat.
func (r Reservation) Active() bool { return r.Status == ReservationConfirmed }

// ReservationDetail is a reservation joined with its flight and seat, as
// returned to clients.
type ReservationDetail struct {
	Reservation
	FlightNumber string     `json:"flight_number"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	DepartureAt  time.Time  `json:"departure_time"`
	ArrivalAt    time.Time  `json:"arrival_time"`
	SeatNumber   string     `json:"seat_number"`
	CabinClass   CabinClass `json:"cabin_class"`
}

// NewReservationDetail combines r with its flight and seat.
func NewReservationDetail(r Reservation, f Flight, s Seat) ReservationDetail {
	return ReservationDetail{
		Reservation:  r,
		FlightNumber: f.FlightNumber,
		Origin:       f.Origin,
		Destination:  f.Destination,
		DepartureAt:  f.DepartureAt,
		ArrivalAt:    f.ArrivalAt,
		SeatNumber:   s.SeatNumber,
		CabinClass:   s.CabinClass,
	}
}
