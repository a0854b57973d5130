package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

type flightRepo struct{ v view }

func (r flightRepo) Create(_ context.Context, f *model.Flight) error {
	return r.v.run(func(st *state) error {
		for _, other := range st.flights {
			if other.FlightNumber == f.FlightNumber {
				return model.ErrDuplicateFlightNumber
			}
		}
		st.flightSeq++
		f.ID = st.flightSeq
		if f.CreatedAt.IsZero() {
			f.CreatedAt = time.Now().UTC()
		}
		st.flights[f.ID] = *f
		return nil
	})
}

func (r flightRepo) GetByID(_ context.Context, id uint64) (model.Flight, error) {
	var out model.Flight
	err := r.v.run(func(st *state) error {
		f, ok := st.flights[id]
		if !ok {
			return model.ErrFlightNotFound
		}
		out = f
		return nil
	})
	return out, err
}

// GetForShare needs no lock of its own: WithTx already holds the store mutex.
func (r flightRepo) GetForShare(ctx context.Context, id uint64) (model.Flight, error) {
	return r.GetByID(ctx, id)
}

func (r flightRepo) GetByNumber(_ context.Context, number string) (model.Flight, error) {
	var out model.Flight
	err := r.v.run(func(st *state) error {
		for _, f := range st.flights {
			if f.FlightNumber == number {
				out = f
				return nil
			}
		}
		return model.ErrFlightNotFound
	})
	return out, err
}

func (r flightRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, err := r.GetByNumber(ctx, number)
	if err == model.ErrFlightNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r flightRepo) Update(_ context.Context, f model.Flight) error {
	return r.v.run(func(st *state) error {
		cur, ok := st.flights[f.ID]
		if !ok {
			return model.ErrFlightNotFound
		}
		cur.Origin, cur.Destination = f.Origin, f.Destination
		cur.DepartureAt, cur.ArrivalAt = f.DepartureAt, f.ArrivalAt
		cur.Status = f.Status
		st.flights[f.ID] = cur
		return nil
	})
}

func (r flightRepo) filter(keep func(st *state, f model.Flight) bool) []model.Flight {
	out := []model.Flight{}
	_ = r.v.run(func(st *state) error {
		for _, f := range st.flights {
			if keep(st, f) {
				out = append(out, f)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureAt.Equal(out[j].DepartureAt) {
			return out[i].DepartureAt.Before(out[j].DepartureAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r flightRepo) List(context.Context) ([]model.Flight, error) {
	return r.filter(func(*state, model.Flight) bool { return true }), nil
}

func (r flightRepo) ListByStatus(_ context.Context, status model.FlightStatus) ([]model.Flight, error) {
	return r.filter(func(_ *state, f model.Flight) bool { return f.Status == status }), nil
}

func bookable(st *state, f model.Flight) bool {
	if f.Status != model.FlightScheduled {
		return false
	}
	for _, s := range st.seats {
		if s.FlightID == f.ID && s.Status == model.SeatAvailable {
			return true
		}
	}
	return false
}

func containsFold(field, sub string) bool {
	sub = strings.TrimSpace(sub)
	return sub == "" || strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

func (r flightRepo) Search(_ context.Context, q model.FlightSearch) ([]model.Flight, error) {
	return r.filter(func(st *state, f model.Flight) bool {
		return containsFold(f.Origin, q.Origin) && containsFold(f.Destination, q.Destination) && bookable(st, f)
	}), nil
}

func (r flightRepo) ListScheduledBetween(_ context.Context, from, to time.Time) ([]model.Flight, error) {
	return r.filter(func(_ *state, f model.Flight) bool {
		if !from.IsZero() && f.DepartureAt.Before(from) {
			return false
		}
		if !to.IsZero() && f.DepartureAt.After(to) {
			return false
		}
		return f.Status == model.FlightScheduled
	}), nil
}

func (r flightRepo) Delete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		if _, ok := st.flights[id]; !ok {
			return model.ErrFlightNotFound
		}
		for _, s := range st.seats {
			if s.FlightID == id {
				return errForeignKey
			}
		}
		for _, res := range st.reservations {
			if res.FlightID == id {
				return errForeignKey
			}
		}
		delete(st.flights, id)
		return nil
	})
}
