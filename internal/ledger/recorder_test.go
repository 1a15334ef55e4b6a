package ledger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/ledger"
	"github.com/pkordes/caravan-share/internal/notify"
	"github.com/pkordes/caravan-share/internal/repo"
)

// mockWriter is a hand-written test double for ledger.Writer.
type mockWriter struct {
	record func(ctx context.Context, r domain.Reservation, kind string) error
}

func (m *mockWriter) Record(ctx context.Context, r domain.Reservation, kind string) error {
	return m.record(ctx, r, kind)
}

var (
	_ ledger.Writer     = (*mockWriter)(nil)
	_ ledger.Writer     = repo.LedgerRepo(nil)
	_ notify.Subscriber = (*ledger.Recorder)(nil)
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func event(id int64, kind notify.EventKind) notify.Event {
	return notify.Event{Kind: kind, Reservation: domain.Reservation{ID: id}}
}

func TestRecorder_WritesEveryQueuedEvent(t *testing.T) {
	var mu sync.Mutex
	got := map[int64][]string{}
	w := &mockWriter{record: func(_ context.Context, r domain.Reservation, kind string) error {
		mu.Lock()
		defer mu.Unlock()
		got[r.ID] = append(got[r.ID], kind)
		return nil
	}}
	rec := ledger.NewRecorder(w, 3, 100, discard())

	for id := int64(1); id <= 20; id++ {
		require.NoError(t, rec.Notify(context.Background(), event(id, notify.EventReservationConfirmed)))
	}
	rec.Close()

	assert.Len(t, got, 20)
	assert.Equal(t, []string{"reservation.confirmed"}, got[7])
}

func TestRecorder_WriteErrorsDoNotStopWorkers(t *testing.T) {
	var mu sync.Mutex
	written := 0
	w := &mockWriter{record: func(_ context.Context, r domain.Reservation, _ string) error {
		if r.ID%2 == 0 {
			return errors.New("connection reset")
		}
		mu.Lock()
		written++
		mu.Unlock()
		return nil
	}}
	rec := ledger.NewRecorder(w, 1, 10, discard())

	for id := int64(1); id <= 6; id++ {
		require.NoError(t, rec.Notify(context.Background(), event(id, notify.EventReservationConfirmed)))
	}
	rec.Close()

	assert.Equal(t, 3, written)
}

func TestRecorder_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	w := &mockWriter{record: func(context.Context, domain.Reservation, string) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}
	rec := ledger.NewRecorder(w, 1, 1, discard())

	require.NoError(t, rec.Notify(context.Background(), event(1, notify.EventReservationConfirmed)))
	<-started // the worker holds job 1; the queue is empty again
	require.NoError(t, rec.Notify(context.Background(), event(2, notify.EventReservationConfirmed)))

	err := rec.Notify(context.Background(), event(3, notify.EventReservationConfirmed))
	assert.ErrorIs(t, err, ledger.ErrQueueFull)

	close(release)
	rec.Close()
}

func TestRecorder_NotifyAfterClose(t *testing.T) {
	rec := ledger.NewRecorder(&mockWriter{}, 1, 1, discard())
	rec.Close()
	rec.Close()

	err := rec.Notify(context.Background(), event(1, notify.EventReservationCancelled))

	assert.ErrorIs(t, err, ledger.ErrClosed)
}
