package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/caravan-share/internal/domain"
)

// Presence reports whether a user currently has a live connection.
type Presence interface {
	IsOnline(userID int64) bool
}

// Sink delivers a message to a connected user right now.
type Sink interface {
	Deliver(ctx context.Context, msg domain.Message) error
}

// Queue holds messages for users who are offline.
// Drain removes and returns a user's messages, oldest first.
type Queue interface {
	Enqueue(ctx context.Context, msg domain.Message) error
	Drain(ctx context.Context, userID int64) ([]domain.Message, error)
}

// Sender is what the notifiers need from a Dispatcher.
type Sender interface {
	Send(ctx context.Context, userID int64, kind domain.MessageKind, text string) error
}

// Dispatcher routes messages by presence.
type Dispatcher struct {
	presence Presence
	sink     Sink
	queue    Queue
	now      func() time.Time
	log      *slog.Logger
}

// NewDispatcher wires a Dispatcher. now stamps message creation times.
func NewDispatcher(presence Presence, sink Sink, queue Queue, now func() time.Time, log *slog.Logger) *Dispatcher {
	return &Dispatcher{presence: presence, sink: sink, queue: queue, now: now, log: log}
}

// Send delivers immediately to an online user and queues otherwise. A failed
// live delivery falls back to the queue so the message is not lost.
func (d *Dispatcher) Send(ctx context.Context, userID int64, kind domain.MessageKind, text string) error {
	msg := domain.NewMessage(userID, kind, text, d.now())

	if d.presence.IsOnline(userID) {
		err := d.sink.Deliver(ctx, msg)
		if err == nil {
			d.log.DebugContext(ctx, "message delivered", "user_id", userID, "kind", kind)
			return nil
		}
		d.log.WarnContext(ctx, "live delivery failed, queueing", "user_id", userID, "error", err)
	}

	if err := d.queue.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("notify.Dispatcher.Send: %w", err)
	}
	d.log.DebugContext(ctx, "message queued", "user_id", userID, "kind", kind)
	return nil
}

// Flush delivers a now-online user's queued messages in order and returns
// how many went out. Messages that could not be delivered are queued again.
func (d *Dispatcher) Flush(ctx context.Context, userID int64) (int, error) {
	if !d.presence.IsOnline(userID) {
		return 0, nil
	}
	msgs, err := d.queue.Drain(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notify.Dispatcher.Flush: %w", err)
	}

	for i, msg := range msgs {
		if err := d.sink.Deliver(ctx, msg); err != nil {
			for _, rest := range msgs[i:] {
				if qerr := d.queue.Enqueue(ctx, rest); qerr != nil {
					d.log.ErrorContext(ctx, "requeue failed, message dropped",
						"user_id", userID, "message_id", rest.ID, "error", qerr)
				}
			}
			return i, fmt.Errorf("notify.Dispatcher.Flush: %w", err)
		}
	}
	return len(msgs), nil
}
