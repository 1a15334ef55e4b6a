package jobs

import (
	"context"
	"log/slog"
)

// OnlineLister reports which users are connected right now.
type OnlineLister interface {
	Online() []int64
}

// Flusher delivers a user's queued notifications.
type Flusher interface {
	Flush(ctx context.Context, userID int64) (int, error)
}

// Redelivery drains the offline queue of every connected user. Connections
// already flush on connect; the sweep picks up messages that were queued
// after a live delivery failed while the user stayed connected.
type Redelivery struct {
	online  OnlineLister
	flusher Flusher
	log     *slog.Logger
}

// NewRedelivery constructs a Redelivery sweep.
func NewRedelivery(online OnlineLister, flusher Flusher, log *slog.Logger) *Redelivery {
	return &Redelivery{online: online, flusher: flusher, log: log}
}

// Run sweeps once and returns how many messages went out.
func (r *Redelivery) Run(ctx context.Context) int {
	total := 0
	for _, userID := range r.online.Online() {
		if ctx.Err() != nil {
			break
		}
		n, err := r.flusher.Flush(ctx, userID)
		total += n
		if err != nil {
			r.log.WarnContext(ctx, "redelivery failed", "user_id", userID, "error", err)
		}
	}
	if total > 0 {
		r.log.InfoContext(ctx, "redelivered queued notifications", "count", total)
	}
	return total
}
