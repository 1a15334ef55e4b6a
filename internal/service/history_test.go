package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/service"
)

// mockLedger is a hand-written test double for service.LedgerReader.
type mockLedger struct {
	getByID func(ctx context.Context, id int64) (domain.Reservation, error)
	events  func(ctx context.Context, reservationID int64) ([]string, error)
}

func (m *mockLedger) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockLedger) Events(ctx context.Context, reservationID int64) ([]string, error) {
	return m.events(ctx, reservationID)
}

var _ service.LedgerReader = (*mockLedger)(nil)

func ledgerWith(res domain.Reservation, events []string, eventsErr error) *mockLedger {
	return &mockLedger{
		getByID: func(_ context.Context, id int64) (domain.Reservation, error) {
			if id != res.ID {
				return domain.Reservation{}, fmt.Errorf("repo.LedgerRepo.GetByID: %w", domain.ErrNotFound)
			}
			return res, nil
		},
		events: func(context.Context, int64) ([]string, error) { return events, eventsErr },
	}
}

func TestHistoryService_ReturnsSnapshotAndEvents(t *testing.T) {
	res := domain.Reservation{ID: 7, UserID: 3, Status: domain.StatusCancelled}
	svc := service.NewHistoryService(ledgerWith(res, []string{"reservation.confirmed", "reservation.cancelled"}, nil))

	got, events, err := svc.History(context.Background(), 3, 7)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, []string{"reservation.confirmed", "reservation.cancelled"}, events)
}

func TestHistoryService_UnknownReservation(t *testing.T) {
	svc := service.NewHistoryService(ledgerWith(domain.Reservation{ID: 7, UserID: 3}, nil, nil))

	_, _, err := svc.History(context.Background(), 3, 8)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_OtherUsersReservation(t *testing.T) {
	svc := service.NewHistoryService(ledgerWith(domain.Reservation{ID: 7, UserID: 3}, nil, nil))

	_, _, err := svc.History(context.Background(), 4, 7)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHistoryService_EventsFailureIsInternal(t *testing.T) {
	svc := service.NewHistoryService(ledgerWith(domain.Reservation{ID: 7, UserID: 3}, nil, errors.New("connection reset")))

	_, _, err := svc.History(context.Background(), 3, 7)

	assert.ErrorIs(t, err, domain.ErrInternal)
}
