// Package validation runs the business-rule checks a booking must pass before
// any state changes. Checks run in a fixed order and the first failure wins.
package validation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// UserFinder resolves users by id.
type UserFinder interface {
	FindByID(id int64) (domain.User, bool)
}

// CaravanFinder resolves caravans by id.
type CaravanFinder interface {
	FindByID(id int64) (domain.Caravan, bool)
}

// AvailabilityChecker answers the half-open overlap question for a caravan.
type AvailabilityChecker interface {
	IsAvailable(caravanID int64, start, end time.Time) bool
}

// Request is the booking being validated. Price is the amount the user must
// be able to pay.
type Request struct {
	UserID    int64
	CaravanID int64
	Start     time.Time
	End       time.Time
	Price     decimal.Decimal
}

// Subject is a Request plus the entities resolved by the existence checks.
// Later checks read User and Caravan from here instead of the stores.
type Subject struct {
	Request
	User    domain.User
	Caravan domain.Caravan
}

// Check is one rule. It returns a domain error on failure and may fill in
// fields of the Subject for the checks after it.
type Check func(s *Subject) error

// Pipeline is an ordered, fail-fast list of checks.
type Pipeline struct {
	checks []Check
}

// New builds a Pipeline running checks in the given order.
func New(checks ...Check) *Pipeline {
	return &Pipeline{checks: checks}
}

// Default builds the booking pipeline:
//
//  1. UserExists
//  2. CaravanExists
//  3. DatesValid
//  4. Available
//  5. SufficientFunds
//
// Existence comes first because the later checks read the resolved entities.
// Availability comes before funds so a user is never told to top up for a
// slot they could not have had anyway.
func Default(users UserFinder, caravans CaravanFinder, reservations AvailabilityChecker, now func() time.Time) *Pipeline {
	return New(
		UserExists(users),
		CaravanExists(caravans),
		DatesValid(now),
		Available(reservations),
		SufficientFunds(),
	)
}

// Validate runs every check in order and returns the populated Subject, or
// the first check's error.
func (p *Pipeline) Validate(req Request) (Subject, error) {
	s := Subject{Request: req}
	for _, check := range p.checks {
		if err := check(&s); err != nil {
			return Subject{}, err
		}
	}
	return s, nil
}

// UserExists resolves the requesting user.
func UserExists(users UserFinder) Check {
	return func(s *Subject) error {
		u, ok := users.FindByID(s.UserID)
		if !ok {
			return &domain.UserNotFoundError{UserID: s.UserID}
		}
		s.User = u
		return nil
	}
}

// CaravanExists resolves the caravan being booked.
func CaravanExists(caravans CaravanFinder) Check {
	return func(s *Subject) error {
		c, ok := caravans.FindByID(s.CaravanID)
		if !ok {
			return &domain.CaravanNotFoundError{CaravanID: s.CaravanID}
		}
		s.Caravan = c
		return nil
	}
}

// DatesValid rejects reversed or empty ranges, stays shorter than
// domain.MinReservationDays, stays longer than domain.MaxReservationDays,
// and stays starting before today.
func DatesValid(now func() time.Time) Check {
	return func(s *Subject) error {
		if !s.Start.Before(s.End) {
			return &domain.InvalidDateRangeError{Reason: "start date must be before end date"}
		}
		if domain.Days(s.Start, s.End) < domain.MinReservationDays {
			return &domain.InvalidDateRangeError{
				Reason: fmt.Sprintf("reservation must be for at least %d day(s)", domain.MinReservationDays),
			}
		}
		if domain.Days(s.Start, s.End) > domain.MaxReservationDays {
			return &domain.InvalidDateRangeError{
				Reason: fmt.Sprintf("reservation must not exceed %d days", domain.MaxReservationDays),
			}
		}
		if domain.Day(s.Start).Before(domain.Day(now())) {
			return &domain.InvalidDateRangeError{Reason: "reservation cannot start in the past"}
		}
		return nil
	}
}

// Available rejects intervals that overlap a confirmed reservation.
func Available(reservations AvailabilityChecker) Check {
	return func(s *Subject) error {
		if !reservations.IsAvailable(s.CaravanID, s.Start, s.End) {
			return &domain.CaravanUnavailableError{CaravanID: s.CaravanID, Start: s.Start, End: s.End}
		}
		return nil
	}
}

// SufficientFunds rejects users whose balance is below the price.
func SufficientFunds() Check {
	return func(s *Subject) error {
		if !s.User.HasSufficientBalance(s.Price) {
			return &domain.InsufficientFundsError{UserID: s.User.ID, Required: s.Price, Available: s.User.Balance}
		}
		return nil
	}
}
