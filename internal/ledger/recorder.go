// Package ledger copies committed reservation events into the durable
// Postgres ledger. A Recorder is a fan-out subscriber: Notify only enqueues,
// and a fixed pool of workers performs the writes so a slow database never
// holds up a booking.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/notify"
)

var (
	// ErrQueueFull is returned by Notify when every worker is behind.
	ErrQueueFull = errors.New("ledger queue full")
	// ErrClosed is returned by Notify after Close.
	ErrClosed = errors.New("ledger recorder closed")
)

const writeTimeout = 5 * time.Second

// Writer persists one reservation event. repo.LedgerRepo satisfies it.
type Writer interface {
	Record(ctx context.Context, r domain.Reservation, kind string) error
}

type job struct {
	reservation domain.Reservation
	kind        string
}

// Recorder queues events and writes them with a worker pool.
type Recorder struct {
	writer Writer
	log    *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// NewRecorder starts workers goroutines draining a queue of queueSize.
func NewRecorder(w Writer, workers, queueSize int, log *slog.Logger) *Recorder {
	workers = max(workers, 1)
	r := &Recorder{
		writer: w,
		log:    log,
		jobs:   make(chan job, max(queueSize, 1)),
	}
	for i := range workers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.workerLoop(i)
		}()
	}
	log.Info("ledger recorder started", "workers", workers, "queue", cap(r.jobs))
	return r
}

// Notify enqueues e without blocking.
func (r *Recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	select {
	case r.jobs <- job{reservation: e.Reservation, kind: string(e.Kind)}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, lets the workers finish what is queued, and
// waits for them.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) workerLoop(id int) {
	for j := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := r.writer.Record(ctx, j.reservation, j.kind)
		cancel()
		if err != nil {
			r.log.Error("ledger write failed",
				"worker", id, "reservation_id", j.reservation.ID, "kind", j.kind, "error", err)
			continue
		}
		r.log.Debug("ledger write", "worker", id, "reservation_id", j.reservation.ID, "kind", j.kind)
	}
}
