package service

import (
	"context"
	"fmt"

	"github.com/pkordes/caravan-share/internal/domain"
)

// LedgerReader is the read side of the durable booking ledger.
type LedgerReader interface {
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)
	Events(ctx context.Context, reservationID int64) ([]string, error)
}

// HistoryService exposes the recorded lifecycle of a reservation to its owner.
type HistoryService struct {
	ledger LedgerReader
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(ledger LedgerReader) *HistoryService {
	return &HistoryService{ledger: ledger}
}

// History returns the last recorded snapshot of reservationID and its event
// kinds, oldest first. Returns domain.ErrNotFound when the ledger has no row
// for it and domain.ErrForbidden when it belongs to someone else.
func (s *HistoryService) History(ctx context.Context, userID, reservationID int64) (domain.Reservation, []string, error) {
	res, err := s.ledger.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, nil, fmt.Errorf("service.HistoryService.History: reservation %d: %w", reservationID, err)
	}
	if res.UserID != userID {
		return domain.Reservation{}, nil, fmt.Errorf("service.HistoryService.History: reservation %d: %w", reservationID, domain.ErrForbidden)
	}
	events, err := s.ledger.Events(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, nil, fmt.Errorf("service.HistoryService.History: %w: %w", domain.ErrInternal, err)
	}
	return res, events, nil
}
