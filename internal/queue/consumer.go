package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// handlerFunc processes one delivery body.  A nil error acks the message;
// any other error rejects it without requeue.
type handlerFunc func(ctx context.Context, body []byte) error

// consume connects to the broker at url and feeds queueName to handle until
// ctx is cancelled.  Dial failures back off exponentially up to 30s and a
// closed delivery channel triggers a reconnect.
func consume(ctx context.Context, url, queueName, name string, handle handlerFunc) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("%s: failed to dial broker: %v; retrying in %s", name, err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queueName, name, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("%s: consume loop ended: %v; reconnecting", name, err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName, name string, handle handlerFunc) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("%s: set QoS failed: %v", name, err)
	}
	if err := declare(ch, queueName); err != nil {
		return err
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handle(ctx, d.Body); err != nil {
				log.Printf("%s: handle message failed: %v", name, err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// StartEventConsumer consumes reservation.events and appends one line per
// event to <dir>/booking.log.  It blocks until ctx is cancelled.
func StartEventConsumer(ctx context.Context, url, dir string) error {
	w := &eventLog{dir: dir}
	return consume(ctx, url, ReservationEventsQueue, "booking-consumer", w.handle)
}

type eventLog struct {
	dir string
	mu  sync.Mutex
}

func (w *eventLog) handle(_ context.Context, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return w.append(ev)
}

func (w *eventLog) append(ev ReservationEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", w.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(w.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as one booking.log line.
func FormatEvent(ev ReservationEvent) string {
	return fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%d | flight_id=%d | flight=%q | route=\"%s-%s\" | departure=%s | seat=%s | class=%s\n",
		ev.OccurredAt, ev.Type, ev.ReservationID, ev.UserID, ev.FlightID, ev.FlightNumber,
		ev.Origin, ev.Destination, ev.DepartureAt, ev.SeatNumber, ev.CabinClass)
}

// ReleaseHandler performs one seat release attempt.
type ReleaseHandler func(ctx context.Context, req SeatReleaseRequest) error

// Republisher puts a release request back on the broker.
type Republisher interface {
	ScheduleRelease(ctx context.Context, req SeatReleaseRequest) error
}

// StartReleaseConsumer consumes seat.release.retry and runs handler for
// each request.  A failed attempt is republished with its attempt count
// incremented until maxAttempts is reached, after which the request is
// dropped.  It blocks until ctx is cancelled.
func StartReleaseConsumer(ctx context.Context, url string, handler ReleaseHandler, retry Republisher, maxAttempts int) error {
	w := &releaseWorker{handler: handler, retry: retry, maxAttempts: maxAttempts, delay: time.Second}
	return consume(ctx, url, SeatReleaseQueue, "release-consumer", w.handle)
}

type releaseWorker struct {
	handler     ReleaseHandler
	retry       Republisher
	maxAttempts int
	// delay is waited before republishing a failed attempt.
	delay time.Duration
}

func (w *releaseWorker) handle(ctx context.Context, body []byte) error {
	var req SeatReleaseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	err := w.handler(ctx, req)
	if err == nil {
		return nil
	}
	if req.Attempt >= w.maxAttempts {
		log.Printf("release-consumer: giving up on seat %d after %d attempts: %v", req.SeatID, req.Attempt, err)
		return nil
	}
	if w.delay > 0 && !sleep(ctx, w.delay) {
		return ctx.Err()
	}
	next := req
	next.Attempt++
	next.Reason = err.Error()
	if perr := w.retry.ScheduleRelease(ctx, next); perr != nil {
		return fmt.Errorf("republish seat %d: %w", req.SeatID, perr)
	}
	return nil
}
