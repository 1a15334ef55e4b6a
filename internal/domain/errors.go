package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced user, caravan, or reservation
// does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (e.g. end date before start date, rating out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when the requested interval collides with an
// existing confirmed reservation, or a request is replayed.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInsufficientFunds is returned when a user's balance cannot cover a price.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrForbidden is returned when a user acts on an entity they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInternal marks failures that are not the caller's fault: panics,
// broken collaborators, store write failures. Everything wrapping ErrInternal
// is logged and reported as HTTP 500.
var ErrInternal = errors.New("internal error")

// UserNotFoundError reports a user id that does not resolve in the user store.
type UserNotFoundError struct {
	UserID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}

func (e *UserNotFoundError) Unwrap() error { return ErrNotFound }

// CaravanNotFoundError reports a caravan id that does not resolve.
type CaravanNotFoundError struct {
	CaravanID int64
}

func (e *CaravanNotFoundError) Error() string {
	return fmt.Sprintf("caravan %d not found", e.CaravanID)
}

func (e *CaravanNotFoundError) Unwrap() error { return ErrNotFound }

// InvalidDateRangeError reports a booking interval that is reversed, empty,
// shorter than MinReservationDays, longer than MaxReservationDays, or starts
// in the past.
type InvalidDateRangeError struct {
	Reason string
}

func (e *InvalidDateRangeError) Error() string {
	return "invalid date range: " + e.Reason
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrValidation }

// CaravanUnavailableError reports that a confirmed reservation already
// overlaps [Start, End) on the caravan.
type CaravanUnavailableError struct {
	CaravanID int64
	Start     time.Time
	End       time.Time
}

func (e *CaravanUnavailableError) Error() string {
	return fmt.Sprintf("caravan %d is not available between %s and %s",
		e.CaravanID, e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

func (e *CaravanUnavailableError) Unwrap() error { return ErrConflict }

// InsufficientFundsError reports a balance below the required price.
type InsufficientFundsError struct {
	UserID    int64
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("user %d has insufficient funds: required %s, available %s",
		e.UserID, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// IsDomainError reports whether err is an expected business-rule failure
// rather than a system fault.
func IsDomainError(err error) bool {
	if err == nil || errors.Is(err, ErrInternal) {
		return false
	}
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrInsufficientFunds, ErrForbidden} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
