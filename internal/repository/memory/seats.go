package memory

import (
	"context"
	"sort"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

type seatRepo struct{ v view }

func (r seatRepo) CreateBatch(_ context.Context, seats []model.Seat) error {
	return r.v.run(func(st *state) error {
		for _, s := range seats {
			st.seatSeq++
			s.ID = st.seatSeq
			st.seats[s.ID] = s
		}
		return nil
	})
}

func (r seatRepo) GetByID(_ context.Context, id uint64) (model.Seat, error) {
	var out model.Seat
	err := r.v.run(func(st *state) error {
		s, ok := st.seats[id]
		if !ok {
			return model.ErrSeatNotFound
		}
		out = s
		return nil
	})
	return out, err
}

func (r seatRepo) filter(keep func(st *state, s model.Seat) bool) []model.Seat {
	out := []model.Seat{}
	_ = r.v.run(func(st *state) error {
		for _, s := range st.seats {
			if keep(st, s) {
				out = append(out, s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r seatRepo) CountAvailableByFlights(_ context.Context, flightIDs []uint64) (map[uint64]int, error) {
	want := make(map[uint64]bool, len(flightIDs))
	for _, id := range flightIDs {
		want[id] = true
	}
	out := make(map[uint64]int, len(flightIDs))
	err := r.v.run(func(st *state) error {
		for _, s := range st.seats {
			if want[s.FlightID] && s.Status == model.SeatAvailable {
				out[s.FlightID]++
			}
		}
		return nil
	})
	return out, err
}

func (r seatRepo) ListByFlight(_ context.Context, flightID uint64) ([]model.Seat, error) {
	return r.filter(func(_ *state, s model.Seat) bool { return s.FlightID == flightID }), nil
}

func (r seatRepo) ListByFlightAndStatus(_ context.Context, flightID uint64, status model.SeatStatus) ([]model.Seat, error) {
	return r.filter(func(_ *state, s model.Seat) bool { return s.FlightID == flightID && s.Status == status }), nil
}

func (r seatRepo) ListAvailableByClass(_ context.Context, flightID uint64, class model.CabinClass) ([]model.Seat, error) {
	return r.filter(func(_ *state, s model.Seat) bool {
		return s.FlightID == flightID && s.Status == model.SeatAvailable && s.CabinClass == class
	}), nil
}

func (r seatRepo) CountByFlightAndStatus(ctx context.Context, flightID uint64, status model.SeatStatus) (int, error) {
	seats, err := r.ListByFlightAndStatus(ctx, flightID, status)
	return len(seats), err
}

func (r seatRepo) UpdateStatus(_ context.Context, id uint64, from []model.SeatStatus, to model.SeatStatus) (bool, error) {
	changed := false
	err := r.v.run(func(st *state) error {
		s, ok := st.seats[id]
		if !ok {
			return nil
		}
		for _, f := range from {
			if s.Status == f {
				s.Status = to
				st.seats[id] = s
				changed = true
				return nil
			}
		}
		return nil
	})
	return changed, err
}

func claimed(st *state, seatID uint64) bool {
	for _, res := range st.reservations {
		if res.SeatID == seatID && res.Status == model.ReservationConfirmed {
			return true
		}
	}
	return false
}

func (r seatRepo) ReleaseUnclaimed(_ context.Context, id uint64) (bool, error) {
	changed := false
	err := r.v.run(func(st *state) error {
		s, ok := st.seats[id]
		if !ok || s.Status == model.SeatAvailable || claimed(st, id) {
			return nil
		}
		s.Status = model.SeatAvailable
		st.seats[id] = s
		changed = true
		return nil
	})
	return changed, err
}

func (r seatRepo) ListUnclaimed(_ context.Context, limit int) ([]model.Seat, error) {
	out := r.filter(func(st *state, s model.Seat) bool {
		return s.Status != model.SeatAvailable && !claimed(st, s.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r seatRepo) DeleteByFlight(_ context.Context, flightID uint64) (int64, error) {
	var n int64
	err := r.v.run(func(st *state) error {
		for id, s := range st.seats {
			if s.FlightID == flightID {
				delete(st.seats, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
