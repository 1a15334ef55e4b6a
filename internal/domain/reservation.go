package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MinReservationDays is the shortest bookable stay.
const MinReservationDays = 1

// MaxReservationDays is the longest bookable stay.
const MaxReservationDays = 365

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	// StatusPending is representable but never produced by the booking flow;
	// it is reserved for a future manual-approval workflow.
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation books one caravan for the half-open day interval
// [StartDate, EndDate). Only confirmed reservations block availability.
type Reservation struct {
	ID         int64
	UserID     int64
	CaravanID  int64
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice decimal.Decimal
	Status     ReservationStatus
	CreatedAt  time.Time
}

func (r Reservation) EntityID() int64 { return r.ID }

func (r Reservation) WithID(id int64) Reservation {
	r.ID = id
	return r
}

// Validate checks the interval invariant: start before end, at least
// MinReservationDays apart.
func (r Reservation) Validate() error {
	if !r.StartDate.Before(r.EndDate) {
		return fmt.Errorf("%w: start date must be before end date", ErrValidation)
	}
	if Days(r.StartDate, r.EndDate) < MinReservationDays {
		return fmt.Errorf("%w: reservation must be for at least %d day(s)", ErrValidation, MinReservationDays)
	}
	return nil
}

// Nights returns the number of booked days.
func (r Reservation) Nights() int {
	return Days(r.StartDate, r.EndDate)
}

// Overlaps reports whether [start, end) intersects the reservation's interval.
// Touching endpoints do not overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return start.Before(r.EndDate) && end.After(r.StartDate)
}
