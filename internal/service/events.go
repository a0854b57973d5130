package service

import (
	"context"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/queue"
)

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

// NopPublisher discards events.  Used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishReservationEvent(context.Context, queue.ReservationEvent) error { return nil }

// publishTimeout bounds a single event publish after commit.
const publishTimeout = 3 * time.Second

func reservationEvent(t queue.ReservationEventType, d model.ReservationDetail) queue.ReservationEvent {
	ev := queue.NewReservationEvent(t)
	ev.ReservationID = d.ID
	ev.UserID = d.UserID
	ev.FlightID = d.FlightID
	ev.FlightNumber = d.FlightNumber
	ev.Origin = d.Origin
	ev.Destination = d.Destination
	if !d.DepartureAt.IsZero() {
		ev.DepartureAt = d.DepartureAt.UTC().Format(time.RFC3339)
	}
	ev.SeatID = d.SeatID
	ev.SeatNumber = d.SeatNumber
	ev.CabinClass = string(d.CabinClass)
	return ev
}
