package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Kipz123/airline-booking-backend/internal/queue"
)

// ReleaseScheduler accepts a seat release that could not be completed
// inline and makes sure it eventually happens.
type ReleaseScheduler interface {
	ScheduleRelease(ctx context.Context, req queue.SeatReleaseRequest) error
}

// ReleaseChain hands a request to the first scheduler that accepts it.
type ReleaseChain []ReleaseScheduler

func (c ReleaseChain) ScheduleRelease(ctx context.Context, req queue.SeatReleaseRequest) error {
	var errs []error
	for _, s := range c {
		if s == nil {
			continue
		}
		err := s.ScheduleRelease(ctx, req)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errors.New("no release scheduler configured")
	}
	return errors.Join(errs...)
}

// seatReleaser is the part of SeatInventory the retry path needs.
type seatReleaser interface {
	ReleaseIfUnclaimed(ctx context.Context, seatID uint64) (bool, error)
}

// ReleaseQueue is the in-process release retry queue.  Requests are keyed
// by seat, so repeated failures for one seat collapse into one entry.
type ReleaseQueue struct {
	inv         seatReleaser
	maxAttempts int

	mu      sync.Mutex
	pending map[uint64]queue.SeatReleaseRequest
}

// NewReleaseQueue returns a queue that releases through inv and gives up on
// a request after maxAttempts failed attempts.
func NewReleaseQueue(inv seatReleaser, maxAttempts int) *ReleaseQueue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReleaseQueue{inv: inv, maxAttempts: maxAttempts, pending: map[uint64]queue.SeatReleaseRequest{}}
}

// ScheduleRelease enqueues req.
func (q *ReleaseQueue) ScheduleRelease(_ context.Context, req queue.SeatReleaseRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.pending[req.SeatID]; ok && cur.Attempt > req.Attempt {
		req.Attempt = cur.Attempt
	}
	q.pending[req.SeatID] = req
	return nil
}

// Pending returns the number of queued seats.
func (q *ReleaseQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Handle performs one release attempt for req.  A seat that is already
// free or held by a newer CONFIRMED reservation counts as done.
func (q *ReleaseQueue) Handle(ctx context.Context, req queue.SeatReleaseRequest) error {
	if _, err := q.inv.ReleaseIfUnclaimed(ctx, req.SeatID); err != nil {
		return fmt.Errorf("release seat %d (attempt %d): %w", req.SeatID, req.Attempt, err)
	}
	return nil
}

// Drain attempts every pending request once and returns how many
// completed.  Failed requests stay queued until they exhaust maxAttempts.
func (q *ReleaseQueue) Drain(ctx context.Context) int {
	q.mu.Lock()
	batch := make([]queue.SeatReleaseRequest, 0, len(q.pending))
	for _, req := range q.pending {
		batch = append(batch, req)
	}
	q.mu.Unlock()

	done := 0
	for _, req := range batch {
		err := q.Handle(ctx, req)
		q.mu.Lock()
		cur, still := q.pending[req.SeatID]
		switch {
		case !still || cur.ID != req.ID:
			// replaced or removed while we were working
		case err == nil:
			delete(q.pending, req.SeatID)
			done++
		case req.Attempt >= q.maxAttempts:
			delete(q.pending, req.SeatID)
			log.Printf("release-retry: giving up on seat %d after %d attempts: %v", req.SeatID, req.Attempt, err)
		default:
			cur.Attempt++
			q.pending[req.SeatID] = cur
			log.Printf("release-retry: %v", err)
		}
		q.mu.Unlock()
	}
	return done
}

// Reconciler frees seats left RESERVED or OCCUPIED without a CONFIRMED
// reservation.  It covers releases that were dropped by every retry path.
type Reconciler struct {
	inv   *SeatInventory
	batch int
}

// NewReconciler returns a reconciler that inspects up to batch seats per sweep.
func NewReconciler(inv *SeatInventory, batch int) *Reconciler {
	if batch <= 0 {
		batch = 100
	}
	return &Reconciler{inv: inv, batch: batch}
}

// Sweep frees unclaimed seats and returns how many it released.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	seats, err := r.inv.ListUnclaimed(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("list unclaimed seats: %w", err)
	}
	released := 0
	for _, s := range seats {
		ok, err := r.inv.ReleaseIfUnclaimed(ctx, s.ID)
		if err != nil {
			log.Printf("reconciler: seat %d: %v", s.ID, err)
			continue
		}
		if ok {
			released++
			log.Printf("reconciler: released unclaimed seat %d (%s) of flight %d", s.ID, s.SeatNumber, s.FlightID)
		}
	}
	return released, nil
}

// ScheduleJobs registers the release drain and the reconciliation sweep on
// s.  Either interval may be zero to skip that job.
func ScheduleJobs(s gocron.Scheduler, q *ReleaseQueue, r *Reconciler, retryEvery, sweepEvery time.Duration) error {
	if q != nil && retryEvery > 0 {
		_, err := s.NewJob(
			gocron.DurationJob(retryEvery),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), retryEvery)
				defer cancel()
				if n := q.Drain(ctx); n > 0 {
					log.Printf("release-retry: released %d seat(s)", n)
				}
			}),
			gocron.WithName("seat-release-retry"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule release retry: %w", err)
		}
	}
	if r != nil && sweepEvery > 0 {
		_, err := s.NewJob(
			gocron.DurationJob(sweepEvery),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), sweepEvery)
				defer cancel()
				if _, err := r.Sweep(ctx); err != nil {
					log.Printf("reconciler: %v", err)
				}
			}),
			gocron.WithName("seat-reconcile"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule reconciler: %w", err)
		}
	}
	return nil
}
