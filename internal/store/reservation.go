package store

import (
	"fmt"
	"time"

	"github.com/pkordes/caravan-share/internal/domain"
)

// ReservationStore is a Store of reservations with a secondary index from
// caravan id to that caravan's reservations, kept in insertion order.
type ReservationStore struct {
	*Store[domain.Reservation]
	byCaravan map[int64][]int64
}

// NewReservationStore constructs an empty ReservationStore.
func NewReservationStore() *ReservationStore {
	rs := &ReservationStore{
		Store:     New[domain.Reservation](),
		byCaravan: make(map[int64][]int64),
	}
	rs.idx = rs
	return rs
}

// FindByCaravan returns every reservation on the caravan, in the order they
// were saved. O(k) in the caravan's reservation count.
func (rs *ReservationStore) FindByCaravan(caravanID int64) []domain.Reservation {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	ids := rs.byCaravan[caravanID]
	out := make([]domain.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, rs.items[id])
	}
	return out
}

// FindByUser returns the user's reservations in insertion order.
// This is a linear scan; a user index can replace it if it ever shows up.
func (rs *ReservationStore) FindByUser(userID int64) []domain.Reservation {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	var out []domain.Reservation
	for _, id := range rs.order {
		if r := rs.items[id]; r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// IsAvailable reports whether no confirmed reservation on the caravan
// overlaps the half-open interval [start, end). Pending and cancelled
// reservations never block.
func (rs *ReservationStore) IsAvailable(caravanID int64, start, end time.Time) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for _, id := range rs.byCaravan[caravanID] {
		r := rs.items[id]
		if r.Status == domain.StatusConfirmed && r.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// Cancel moves a confirmed reservation to cancelled and returns it.
// Returns domain.ErrNotFound for an unknown id and domain.ErrValidation when
// the reservation is not confirmed.
func (rs *ReservationStore) Cancel(id int64) (domain.Reservation, error) {
	r, err := rs.Update(id, func(r domain.Reservation) (domain.Reservation, error) {
		if r.Status != domain.StatusConfirmed {
			return r, fmt.Errorf("%w: reservation %d is %s", domain.ErrValidation, id, r.Status)
		}
		r.Status = domain.StatusCancelled
		return r, nil
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("store.ReservationStore.Cancel: %w", err)
	}
	return r, nil
}

func (rs *ReservationStore) check(domain.Reservation, bool, domain.Reservation) error {
	return nil
}

func (rs *ReservationStore) add(prev domain.Reservation, existed bool, next domain.Reservation) {
	if existed && prev.CaravanID == next.CaravanID {
		return
	}
	if existed {
		rs.remove(prev)
	}
	rs.byCaravan[next.CaravanID] = append(rs.byCaravan[next.CaravanID], next.ID)
}

func (rs *ReservationStore) remove(old domain.Reservation) {
	ids := rs.byCaravan[old.CaravanID]
	for i, id := range ids {
		if id == old.ID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(rs.byCaravan, old.CaravanID)
		return
	}
	rs.byCaravan[old.CaravanID] = ids
}
