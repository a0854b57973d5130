package model

import (
	"strings"
	"time"
)

// FlightStatus is the lifecycle state of a flight.  A flight starts
// SCHEDULED and may only move to CANCELLED.
type FlightStatus string

const (
	FlightScheduled FlightStatus = "SCHEDULED"
	FlightCancelled FlightStatus = "CANCELLED"
)

// ParseFlightStatus normalises s and reports whether it names a known status.
func ParseFlightStatus(s string) (FlightStatus, bool) {
	switch st := FlightStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case FlightScheduled, FlightCancelled:
		return st, true
	}
	return "", false
}

// Flight mirrors the `flights` table.
type Flight struct {
	ID           uint64       `json:"id"`              // flights.id
	FlightNumber string       `json:"flight_number"`   // flights.flight_number (unique)
	Origin       string       `json:"origin"`          // flights.origin
	Destination  string       `json:"destination"`     // flights.destination
	DepartureAt  time.Time    `json:"departure_time"`  // flights.departure_at (UTC)
	ArrivalAt    time.Time    `json:"arrival_time"`    // flights.arrival_at (UTC)
	Status       FlightStatus `json:"status"`          // flights.status
	SeatCapacity int          `json:"seat_capacity"`   // flights.seat_capacity, fixed at creation
	CreatedAt    time.Time    `json:"created_at"`      // flights.created_at
}

// Bookable reports whether new reservations may be placed on the flight.
func (f Flight) Bookable() bool { return f.Status == FlightScheduled }

// Cancel returns the CANCELLED state.  Cancelling twice is allowed.
func (f Flight) Cancel() FlightStatus { return FlightCancelled }

// ValidateSchedule checks that arrival is strictly after departure.
func ValidateSchedule(departure, arrival time.Time) error {
	if !arrival.After(departure) {
		return ErrInvalidSchedule
	}
	return nil
}

// MaxSeatCapacity bounds the seat pool of one flight.
const MaxSeatCapacity = 1000

// ValidateRoute rejects an origin or destination that is blank once trimmed.
func ValidateRoute(origin, destination string) error {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return ErrInvalidRoute
	}
	return nil
}

// FlightPatch carries the optional fields of a partial flight update.  Nil
// fields are left unchanged.
type FlightPatch struct {
	Origin      *string
	Destination *string
	DepartureAt *time.Time
	ArrivalAt   *time.Time
}

// Apply merges p into f and validates the resulting schedule.  f itself is
// not modified.
func (p FlightPatch) Apply(f Flight) (Flight, error) {
	if p.Origin != nil {
		f.Origin = strings.TrimSpace(*p.Origin)
	}
	if p.Destination != nil {
		f.Destination = strings.TrimSpace(*p.Destination)
	}
	if p.DepartureAt != nil {
		f.DepartureAt = p.DepartureAt.UTC()
	}
	if p.ArrivalAt != nil {
		f.ArrivalAt = p.ArrivalAt.UTC()
	}
	if err := ValidateRoute(f.Origin, f.Destination); err != nil {
		return Flight{}, err
	}
	if err := ValidateSchedule(f.DepartureAt, f.ArrivalAt); err != nil {
		return Flight{}, err
	}
	return f, nil
}

// FlightSearch holds the optional filters of a flight search.  Empty
// fields do not constrain the result.
type FlightSearch struct {
	Origin      string
	Destination string
}
