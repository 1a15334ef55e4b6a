// Package notify fans booking events out to subscribers and routes the
// resulting messages by presence: online users get them immediately, offline
// users get them queued for later.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/caravan-share/internal/domain"
)

// EventKind names what happened to a reservation.
type EventKind string

const (
	EventReservationConfirmed EventKind = "reservation.confirmed"
	EventReservationCancelled EventKind = "reservation.cancelled"
)

// Event is published once per successful booking or cancellation.
type Event struct {
	Kind        EventKind
	Reservation domain.Reservation
	Caravan     domain.Caravan
}

// Subscriber reacts to an Event. An error is logged by the FanOut and never
// reaches the booking that caused the event.
type Subscriber interface {
	Notify(ctx context.Context, e Event) error
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(ctx context.Context, e Event) error

func (f SubscriberFunc) Notify(ctx context.Context, e Event) error { return f(ctx, e) }

type registration struct {
	name string
	sub  Subscriber
}

// FanOut is an ordered subscriber registry. Publish calls every subscriber
// in attach order; a failing or panicking subscriber does not stop the rest.
type FanOut struct {
	mu   sync.RWMutex
	subs []registration
	log  *slog.Logger
}

// NewFanOut constructs an empty FanOut that logs subscriber failures to log.
func NewFanOut(log *slog.Logger) *FanOut {
	return &FanOut{log: log}
}

// Attach registers sub under name. Attaching a name twice replaces the
// earlier subscriber in place.
func (f *FanOut) Attach(name string, sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].name == name {
			f.subs[i].sub = sub
			return
		}
	}
	f.subs = append(f.subs, registration{name: name, sub: sub})
}

// Detach removes the subscriber registered under name.
func (f *FanOut) Detach(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].name == name {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers e to every subscriber and returns how many failed.
// The registry lock is not held while subscribers run.
func (f *FanOut) Publish(ctx context.Context, e Event) int {
	f.mu.RLock()
	subs := make([]registration, len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	failed := 0
	for _, r := range subs {
		if err := call(ctx, r.sub, e); err != nil {
			failed++
			f.log.WarnContext(ctx, "subscriber failed",
				"subscriber", r.name,
				"event", e.Kind,
				"reservation_id", e.Reservation.ID,
				"error", err,
			)
		}
	}
	return failed
}

func call(ctx context.Context, sub Subscriber, e Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return sub.Notify(ctx, e)
}
