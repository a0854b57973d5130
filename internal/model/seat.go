package model

import "strings"

// SeatStatus is the booking state of a seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatReserved  SeatStatus = "RESERVED"
	SeatOccupied  SeatStatus = "OCCUPIED"
)

// CabinClass is assigned by row when the seat pool is generated.
type CabinClass string

const (
	CabinFirst    CabinClass = "FIRST"
	CabinBusiness CabinClass = "BUSINESS"
	CabinEconomy  CabinClass = "ECONOMY"
)

// ParseCabinClass normalises s and reports whether it names a known class.
func ParseCabinClass(s string) (CabinClass, bool) {
	switch c := CabinClass(strings.ToUpper(strings.TrimSpace(s))); c {
	case CabinFirst, CabinBusiness, CabinEconomy:
		return c, true
	}
	return "", false
}

// Seat mirrors the `seats` table.
type Seat struct {
	ID         uint64     `json:"id"`             // seats.id
	FlightID   uint64     `json:"flight_id"`      // seats.flight_id, immutable
	SeatNumber string     `json:"seat_number"`    // seats.seat_number, unique per flight
	CabinClass CabinClass `json:"cabin_class"`    // seats.cabin_class
	Status     SeatStatus `json:"booking_status"` // seats.status
}

// IsAvailable reports whether the seat can be reserved.
func (s Seat) IsAvailable() bool { return s.Status == SeatAvailable }

// seatTransitions lists, per target state, the states a seat may move from.
var seatTransitions = map[SeatStatus][]SeatStatus{
	SeatReserved:  {SeatAvailable},
	SeatOccupied:  {SeatReserved},
	SeatAvailable: {SeatReserved, SeatOccupied},
}

// SeatSources returns the states from which a seat may move to target.  The
// result is what a conditional update must match on.
func SeatSources(target SeatStatus) []SeatStatus {
	src := seatTransitions[target]
	out := make([]SeatStatus, len(src))
	copy(out, src)
	return out
}

// Transition returns target if moving from the current status is legal,
// otherwise ErrIllegalSeatTransition.
func (st SeatStatus) Transition(target SeatStatus) (SeatStatus, error) {
	for _, from := range seatTransitions[target] {
		if from == st {
			return target, nil
		}
	}
	return st, ErrIllegalSeatTransition
}
