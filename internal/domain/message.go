package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies a notification so clients can render it.
type MessageKind string

const (
	MessageReservationConfirmed MessageKind = "reservation.confirmed"
	MessageReservationCancelled MessageKind = "reservation.cancelled"
	MessageHostBooking          MessageKind = "host.booking"
	MessageHostCancellation     MessageKind = "host.cancellation"
)

// Message is a notification addressed to a single user. It is delivered
// immediately when the user is online and queued otherwise.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	UserID    int64       `json:"user_id"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessage builds a Message with a fresh id.
func NewMessage(userID int64, kind MessageKind, text string, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Text:      text,
		CreatedAt: now,
	}
}
