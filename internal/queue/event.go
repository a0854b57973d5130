// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumers that move them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  All queues are durable and bound to the default exchange.
const (
	ReservationEventsQueue = "reservation.events"
	SeatReleaseQueue       = "seat.release.retry"
)

// ReservationEventType names what happened to a reservation.
type ReservationEventType string

const (
	ReservationConfirmedEvent ReservationEventType = "reservation.confirmed"
	ReservationCancelledEvent ReservationEventType = "reservation.cancelled"
	ReservationDeletedEvent   ReservationEventType = "reservation.deleted"
)

// ReservationEvent is published after a reservation change commits.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type ReservationEvent struct {
	ID            string               `json:"id"`
	Type          ReservationEventType `json:"type"`
	ReservationID uint64               `json:"reservation_id"`
	UserID        uint64               `json:"user_id"`
	FlightID      uint64               `json:"flight_id"`
	FlightNumber  string               `json:"flight_number"`
	Origin        string               `json:"origin"`
	Destination   string               `json:"destination"`
	DepartureAt   string               `json:"departure_time"`
	SeatID        uint64               `json:"seat_id"`
	SeatNumber    string               `json:"seat_number"`
	CabinClass    string               `json:"cabin_class"`
	OccurredAt    string               `json:"occurred_at"`
}

// NewReservationEvent stamps an event with a fresh id and the current time.
func NewReservationEvent(t ReservationEventType) ReservationEvent {
	return ReservationEvent{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// SeatReleaseRequest asks for a seat to be freed after its reservation was
// cancelled but the release itself failed.
type SeatReleaseRequest struct {
	ID            string `json:"id"`
	SeatID        uint64 `json:"seat_id"`
	ReservationID uint64 `json:"reservation_id"`
	Attempt       int    `json:"attempt"`
	Reason        string `json:"reason"`
	RequestedAt   string `json:"requested_at"`
}

// NewSeatReleaseRequest builds a first-attempt release request.
func NewSeatReleaseRequest(seatID, reservationID uint64, reason string) SeatReleaseRequest {
	return SeatReleaseRequest{
		ID:            uuid.NewString(),
		SeatID:        seatID,
		ReservationID: reservationID,
		Attempt:       1,
		Reason:        reason,
		RequestedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
