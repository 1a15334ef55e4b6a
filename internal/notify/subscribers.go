package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/caravan-share/internal/domain"
)

// UserNotifier tells the booker about their own reservation.
type UserNotifier struct {
	sender Sender
}

func NewUserNotifier(sender Sender) *UserNotifier {
	return &UserNotifier{sender: sender}
}

func (n *UserNotifier) Notify(ctx context.Context, e Event) error {
	r := e.Reservation
	switch e.Kind {
	case EventReservationConfirmed:
		return n.sender.Send(ctx, r.UserID, domain.MessageReservationConfirmed,
			fmt.Sprintf("Reservation %d for %q from %s to %s is confirmed. Total: %s.",
				r.ID, e.Caravan.Name, r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout), r.TotalPrice.StringFixed(2)))
	case EventReservationCancelled:
		return n.sender.Send(ctx, r.UserID, domain.MessageReservationCancelled,
			fmt.Sprintf("Reservation %d for %q has been cancelled. %s was refunded.",
				r.ID, e.Caravan.Name, r.TotalPrice.StringFixed(2)))
	}
	return nil
}

// HostNotifier tells the caravan's owner about bookings on it.
type HostNotifier struct {
	sender Sender
}

func NewHostNotifier(sender Sender) *HostNotifier {
	return &HostNotifier{sender: sender}
}

func (n *HostNotifier) Notify(ctx context.Context, e Event) error {
	r := e.Reservation
	switch e.Kind {
	case EventReservationConfirmed:
		return n.sender.Send(ctx, e.Caravan.OwnerID, domain.MessageHostBooking,
			fmt.Sprintf("New reservation %d on %q from %s to %s.",
				r.ID, e.Caravan.Name, r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout)))
	case EventReservationCancelled:
		return n.sender.Send(ctx, e.Caravan.OwnerID, domain.MessageHostCancellation,
			fmt.Sprintf("Reservation %d on %q was cancelled.", r.ID, e.Caravan.Name))
	}
	return nil
}

// StockObserver keeps a running count of confirmed nights per caravan.
type StockObserver struct {
	mu     sync.Mutex
	nights map[int64]int
	log    *slog.Logger
}

func NewStockObserver(log *slog.Logger) *StockObserver {
	return &StockObserver{nights: make(map[int64]int), log: log}
}

func (o *StockObserver) Notify(ctx context.Context, e Event) error {
	id, n := e.Reservation.CaravanID, e.Reservation.Nights()
	o.mu.Lock()
	switch e.Kind {
	case EventReservationConfirmed:
		o.nights[id] += n
	case EventReservationCancelled:
		o.nights[id] -= n
	}
	total := o.nights[id]
	o.mu.Unlock()

	o.log.InfoContext(ctx, "caravan stock updated",
		"caravan_id", id, "event", e.Kind, "booked_nights", total)
	return nil
}

// BookedNights returns the confirmed nights recorded for a caravan.
func (o *StockObserver) BookedNights(caravanID int64) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nights[caravanID]
}
