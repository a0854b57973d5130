package model

import "strconv"

// seatLetters are assigned round-robin across each row.
const seatLetters = "ABCDEF"

// SeatsPerRow is the number of seats in one cabin row.
const SeatsPerRow = len(seatLetters)

// CabinForRow returns the cabin class of a 1-based row: rows 1-2 are FIRST,
// rows 3-5 BUSINESS and every later row ECONOMY.
func CabinForRow(row int) CabinClass {
	switch {
	case row <= 2:
		return CabinFirst
	case row <= 5:
		return CabinBusiness
	default:
		return CabinEconomy
	}
}

// GenerateSeatPool builds the seat pool of a flight with the given
// capacity: seat i gets letter A-F by i%6 and row i/6+1, so numbering runs
// A1..F1, A2..F2 and so on.  All seats start AVAILABLE.  The seats carry
// flightID but no ID of their own.
func GenerateSeatPool(flightID uint64, capacity int) ([]Seat, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	seats := make([]Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/SeatsPerRow + 1
		seats = append(seats, Seat{
			FlightID:   flightID,
			SeatNumber: string(seatLetters[i%SeatsPerRow]) + strconv.Itoa(row),
			CabinClass: CabinForRow(row),
			Status:     SeatAvailable,
		})
	}
	return seats, nil
}
