package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
)

type reservationRepo struct{ v view }

func (r reservationRepo) Create(_ context.Context, res *model.Reservation) error {
	return r.v.run(func(st *state) error {
		if res.Status == model.ReservationConfirmed && claimed(st, res.SeatID) {
			return model.ErrSeatUnavailable
		}
		st.reservationSeq++
		res.ID = st.reservationSeq
		if res.CreatedAt.IsZero() {
			res.CreatedAt = time.Now().UTC()
		}
		st.reservations[res.ID] = *res
		return nil
	})
}

func (r reservationRepo) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	var out model.Reservation
	err := r.v.run(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return model.ErrReservationNotFound
		}
		out = res
		return nil
	})
	return out, err
}

func (r reservationRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
	res, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.UserID != userID {
		return model.Reservation{}, model.ErrReservationNotFound
	}
	return res, nil
}

func (r reservationRepo) UpdateStatus(_ context.Context, id uint64, from, to model.ReservationStatus) (bool, error) {
	changed := false
	err := r.v.run(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok || res.Status != from {
			return nil
		}
		if to == model.ReservationConfirmed && claimed(st, res.SeatID) {
			return model.ErrSeatUnavailable
		}
		res.Status = to
		st.reservations[id] = res
		changed = true
		return nil
	})
	return changed, err
}

// filter returns matching reservations, newest first when newest is set
// and in id order otherwise.
func (r reservationRepo) filter(newest bool, keep func(res model.Reservation) bool) []model.Reservation {
	out := []model.Reservation{}
	_ = r.v.run(func(st *state) error {
		for _, res := range st.reservations {
			if keep(res) {
				out = append(out, res)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if newest {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r reservationRepo) List(context.Context) ([]model.Reservation, error) {
	return r.filter(true, func(model.Reservation) bool { return true }), nil
}

func (r reservationRepo) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	return r.filter(true, func(res model.Reservation) bool { return res.UserID == userID }), nil
}

func (r reservationRepo) ListByUserAndStatus(_ context.Context, userID uint64, status model.ReservationStatus) ([]model.Reservation, error) {
	return r.filter(true, func(res model.Reservation) bool { return res.UserID == userID && res.Status == status }), nil
}

func (r reservationRepo) CountByUserAndStatus(ctx context.Context, userID uint64, status model.ReservationStatus) (int, error) {
	out, err := r.ListByUserAndStatus(ctx, userID, status)
	return len(out), err
}

func (r reservationRepo) ListByFlight(_ context.Context, flightID uint64) ([]model.Reservation, error) {
	return r.filter(false, func(res model.Reservation) bool { return res.FlightID == flightID }), nil
}

func (r reservationRepo) ListByFlightAndStatus(_ context.Context, flightID uint64, status model.ReservationStatus) ([]model.Reservation, error) {
	return r.filter(false, func(res model.Reservation) bool { return res.FlightID == flightID && res.Status == status }), nil
}

func (r reservationRepo) ExistsConfirmedForSeat(_ context.Context, seatID uint64) (bool, error) {
	found := false
	err := r.v.run(func(st *state) error {
		found = claimed(st, seatID)
		return nil
	})
	return found, err
}

func (r reservationRepo) ExistsConfirmedForUserSeat(_ context.Context, userID, seatID uint64) (bool, error) {
	out := r.filter(false, func(res model.Reservation) bool {
		return res.UserID == userID && res.SeatID == seatID && res.Status == model.ReservationConfirmed
	})
	return len(out) > 0, nil
}

func (r reservationRepo) Delete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		if _, ok := st.reservations[id]; !ok {
			return model.ErrReservationNotFound
		}
		delete(st.reservations, id)
		return nil
	})
}

func (r reservationRepo) DeleteByFlight(_ context.Context, flightID uint64) (int64, error) {
	var n int64
	err := r.v.run(func(st *state) error {
		for id, res := range st.reservations {
			if res.FlightID == flightID {
				delete(st.reservations, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
