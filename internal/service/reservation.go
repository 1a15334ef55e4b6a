// Package service contains the business logic of the reservation engine.
// Services validate inputs, enforce business rules, and orchestrate store
// calls. Each service depends on small interfaces declared here, not on the
// concrete stores, so it can be unit-tested with hand-written doubles.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/notify"
	"github.com/pkordes/caravan-share/internal/pricing"
	"github.com/pkordes/caravan-share/internal/validation"
)

// UserRepo is the slice of the user store the booking flow needs.
// Debit and Credit are atomic read-modify-writes of the balance.
type UserRepo interface {
	FindByID(id int64) (domain.User, bool)
	Debit(userID int64, amount decimal.Decimal) (domain.User, error)
	Credit(userID int64, amount decimal.Decimal) (domain.User, error)
}

// CaravanRepo resolves caravans.
type CaravanRepo interface {
	FindByID(id int64) (domain.Caravan, bool)
}

// ReservationRepo is the slice of the reservation store the booking flow
// needs. Save assigns the reservation id.
type ReservationRepo interface {
	Save(r domain.Reservation) (domain.Reservation, error)
	FindByID(id int64) (domain.Reservation, bool)
	FindByUser(userID int64) []domain.Reservation
	IsAvailable(caravanID int64, start, end time.Time) bool
	Cancel(id int64) (domain.Reservation, error)
}

// Validator runs the booking rules.
type Validator interface {
	Validate(req validation.Request) (validation.Subject, error)
}

// Publisher fans events out after a booking commits.
type Publisher interface {
	Publish(ctx context.Context, e notify.Event) int
}

// ReservationDeps bundles the collaborators of a ReservationService.
// Strategy defaults to pricing.NoDiscount and Now to time.Now.
type ReservationDeps struct {
	Users        UserRepo
	Caravans     CaravanRepo
	Reservations ReservationRepo
	Validator    Validator
	Rates        pricing.RateSource
	Strategy     pricing.Strategy
	Publisher    Publisher
	Now          func() time.Time
	Log          *slog.Logger
}

// ReservationService books caravans. A booking either returns a confirmed
// reservation or leaves balances and stores exactly as they were.
//
// Bookings on the same caravan are serialised by a per-caravan lock held from
// the availability check until the reservation is saved; bookings by the same
// user are serialised by a per-user lock held from the funds check until the
// debit. Locks are always taken caravan first, then user.
type ReservationService struct {
	ReservationDeps
	caravanLocks *keyedMutex
	userLocks    *keyedMutex
}

// NewReservationService constructs a ReservationService.
func NewReservationService(deps ReservationDeps) *ReservationService {
	if deps.Strategy == nil {
		deps.Strategy = pricing.NoDiscount{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &ReservationService{
		ReservationDeps: deps,
		caravanLocks:    newKeyedMutex(),
		userLocks:       newKeyedMutex(),
	}
}

// bookingState is a step of the booking state machine.
type bookingState string

const (
	stateReceived  bookingState = "received"
	stateValidated bookingState = "validated"
	statePriced    bookingState = "priced"
	statePaid      bookingState = "paid"
	statePersisted bookingState = "persisted"
	stateNotified  bookingState = "notified"
	stateFailed    bookingState = "failed"
)

// booking carries one transaction through the state machine.
type booking struct {
	userID    int64
	caravanID int64
	start     time.Time
	end       time.Time
	state     bookingState
	quote     pricing.Quote
	caravan   domain.Caravan
	debited   bool
}

// CreateReservation books caravanID for [start, end) on behalf of userID.
// Dates are truncated to calendar days.
//
// Expected failures come back as the typed errors of the domain package
// (*domain.UserNotFoundError, *domain.CaravanNotFoundError,
// *domain.InvalidDateRangeError, *domain.CaravanUnavailableError,
// *domain.InsufficientFundsError). Anything else wraps domain.ErrInternal.
// If ctx is done before the balance is debited the booking is abandoned with
// an error wrapping ctx's error; once the debit happened the booking runs to
// completion.
func (s *ReservationService) CreateReservation(ctx context.Context, userID, caravanID int64, start, end time.Time) (domain.Reservation, error) {
	b := &booking{
		userID:    userID,
		caravanID: caravanID,
		start:     domain.Day(start),
		end:       domain.Day(end),
		state:     stateReceived,
	}

	res, err := s.commit(ctx, b)
	if err != nil {
		s.transition(ctx, b, stateFailed)
		switch {
		case domain.IsDomainError(err):
			s.Log.InfoContext(ctx, "reservation rejected",
				"user_id", userID, "caravan_id", caravanID, "reason", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.Log.WarnContext(ctx, "reservation abandoned",
				"user_id", userID, "caravan_id", caravanID, "error", err)
		default:
			s.Log.ErrorContext(ctx, "reservation failed",
				"user_id", userID, "caravan_id", caravanID, "error", err)
		}
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.CreateReservation: %w", err)
	}

	// Notification is best-effort and runs outside every lock. The request
	// context may already be cancelled; the booking has committed regardless.
	s.Publisher.Publish(context.WithoutCancel(ctx), notify.Event{
		Kind:        notify.EventReservationConfirmed,
		Reservation: res,
		Caravan:     b.caravan,
	})
	s.transition(ctx, b, stateNotified)

	s.Log.InfoContext(ctx, "reservation confirmed",
		"reservation_id", res.ID,
		"user_id", userID,
		"caravan_id", caravanID,
		"base", b.quote.Base.String(),
		"discount", b.quote.Discount.StringFixed(2),
		"total", res.TotalPrice.StringFixed(2),
	)
	return res, nil
}

// commit runs the locked part of a booking: validate, price, debit, save.
func (s *ReservationService) commit(ctx context.Context, b *booking) (res domain.Reservation, err error) {
	unlockCaravan := s.caravanLocks.Lock(b.caravanID)
	defer unlockCaravan()
	unlockUser := s.userLocks.Lock(b.userID)
	defer unlockUser()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic in state %s: %v", domain.ErrInternal, b.state, p)
		}
		if err != nil && b.debited {
			s.refund(ctx, b)
		}
	}()

	// The base price is needed before validation because the funds check
	// compares against it. An unknown caravan prices at the flat rate and is
	// rejected by the pipeline right after.
	caravan, _ := s.Caravans.FindByID(b.caravanID)
	base := pricing.BasePrice(s.Rates, caravan, b.start, b.end)

	subject, err := s.Validator.Validate(validation.Request{
		UserID:    b.userID,
		CaravanID: b.caravanID,
		Start:     b.start,
		End:       b.end,
		Price:     base,
	})
	if err != nil {
		return domain.Reservation{}, asDomainOrInternal(err)
	}
	b.caravan = subject.Caravan
	s.transition(ctx, b, stateValidated)

	b.quote = pricing.Apply(s.Strategy, base, b.start, b.end)
	s.transition(ctx, b, statePriced)

	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, fmt.Errorf("abandoned before payment: %w", err)
	}

	if _, err := s.Users.Debit(b.userID, b.quote.Final); err != nil {
		return domain.Reservation{}, asDomainOrInternal(err)
	}
	b.debited = true
	s.transition(ctx, b, statePaid)

	res, err = s.Reservations.Save(domain.Reservation{
		UserID:     b.userID,
		CaravanID:  b.caravanID,
		StartDate:  b.start,
		EndDate:    b.end,
		TotalPrice: b.quote.Final,
		Status:     domain.StatusConfirmed,
		CreatedAt:  s.Now().UTC(),
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("%w: save reservation: %w", domain.ErrInternal, err)
	}
	s.transition(ctx, b, statePersisted)
	return res, nil
}

// refund reverses a debit after a later step failed.
func (s *ReservationService) refund(ctx context.Context, b *booking) {
	if _, err := s.Users.Credit(b.userID, b.quote.Final); err != nil {
		s.Log.ErrorContext(ctx, "CRITICAL: refund after failed booking did not apply",
			"user_id", b.userID, "amount", b.quote.Final.StringFixed(2), "error", err)
		return
	}
	b.debited = false
	s.Log.WarnContext(ctx, "refunded debit of failed booking",
		"user_id", b.userID, "amount", b.quote.Final.StringFixed(2))
}

func (s *ReservationService) transition(ctx context.Context, b *booking, next bookingState) {
	s.Log.DebugContext(ctx, "booking transition",
		"user_id", b.userID, "caravan_id", b.caravanID, "from", b.state, "to", next)
	b.state = next
}

// IsAvailable reports whether caravanID has no confirmed reservation
// overlapping [start, end).
func (s *ReservationService) IsAvailable(caravanID int64, start, end time.Time) bool {
	return s.Reservations.IsAvailable(caravanID, domain.Day(start), domain.Day(end))
}

// FindByUser returns the user's reservations in booking order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) FindByUser(userID int64) []domain.Reservation {
	out := s.Reservations.FindByUser(userID)
	if out == nil {
		return []domain.Reservation{}
	}
	return out
}

// Cancel cancels one of the user's confirmed reservations and refunds its
// total price. Returns domain.ErrNotFound for an unknown reservation,
// domain.ErrForbidden when it belongs to someone else, and
// domain.ErrValidation when it is not confirmed.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID int64) (domain.Reservation, error) {
	r, ok := s.Reservations.FindByID(reservationID)
	if !ok {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: reservation %d: %w", reservationID, domain.ErrNotFound)
	}
	if r.UserID != userID {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: reservation %d: %w", reservationID, domain.ErrForbidden)
	}

	unlockCaravan := s.caravanLocks.Lock(r.CaravanID)
	unlockUser := s.userLocks.Lock(r.UserID)
	cancelled, err := s.cancelLocked(r)
	unlockUser()
	unlockCaravan()
	if err != nil {
		s.Log.WarnContext(ctx, "cancellation failed", "reservation_id", reservationID, "error", err)
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}

	caravan, _ := s.Caravans.FindByID(cancelled.CaravanID)
	s.Publisher.Publish(context.WithoutCancel(ctx), notify.Event{
		Kind:        notify.EventReservationCancelled,
		Reservation: cancelled,
		Caravan:     caravan,
	})
	s.Log.InfoContext(ctx, "reservation cancelled",
		"reservation_id", cancelled.ID, "user_id", userID, "refund", cancelled.TotalPrice.StringFixed(2))
	return cancelled, nil
}

func (s *ReservationService) cancelLocked(r domain.Reservation) (domain.Reservation, error) {
	cancelled, err := s.Reservations.Cancel(r.ID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if _, err := s.Users.Credit(r.UserID, cancelled.TotalPrice); err != nil {
		// Put the reservation back so the user keeps what they paid for.
		if _, rerr := s.Reservations.Save(r); rerr != nil {
			s.Log.Error("CRITICAL: could not restore reservation after failed refund",
				"reservation_id", r.ID, "error", rerr)
		}
		return domain.Reservation{}, fmt.Errorf("%w: refund: %w", domain.ErrInternal, err)
	}
	return cancelled, nil
}

// asDomainOrInternal passes domain errors through and marks everything else
// as internal.
func asDomainOrInternal(err error) error {
	if domain.IsDomainError(err) || errors.Is(err, domain.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInternal, err)
}
