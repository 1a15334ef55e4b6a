package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/caravan-share/internal/domain"
)

// ReviewRepo stores reviews.
type ReviewRepo interface {
	Save(r domain.Review) (domain.Review, error)
}

// RatedCaravanRepo reads caravans and folds ratings into them atomically.
type RatedCaravanRepo interface {
	FindByID(id int64) (domain.Caravan, bool)
	Update(id int64, fn func(domain.Caravan) (domain.Caravan, error)) (domain.Caravan, error)
}

// StayFinder lists a user's reservations.
type StayFinder interface {
	FindByUser(userID int64) []domain.Reservation
}

// ReviewService accepts reviews from guests who have stayed in a caravan.
type ReviewService struct {
	reviews  ReviewRepo
	caravans RatedCaravanRepo
	stays    StayFinder
	now      func() time.Time
	log      *slog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews ReviewRepo, caravans RatedCaravanRepo, stays StayFinder, now func() time.Time, log *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, caravans: caravans, stays: stays, now: now, log: log}
}

// Submit records a 1..5 rating by userID for caravanID and updates the
// caravan's running average. Only users holding a confirmed reservation on
// the caravan may review it.
func (s *ReviewService) Submit(ctx context.Context, userID, caravanID int64, rating int, comment string) (domain.Review, error) {
	if _, ok := s.caravans.FindByID(caravanID); !ok {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w", &domain.CaravanNotFoundError{CaravanID: caravanID})
	}
	if !s.hasStayed(userID, caravanID) {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: user %d has no confirmed reservation on caravan %d: %w",
			userID, caravanID, domain.ErrForbidden)
	}

	saved, err := s.reviews.Save(domain.Review{
		UserID:    userID,
		CaravanID: caravanID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w", err)
	}

	if _, err := s.caravans.Update(caravanID, func(c domain.Caravan) (domain.Caravan, error) {
		return c.WithRating(rating), nil
	}); err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: update rating: %w", err)
	}

	s.log.InfoContext(ctx, "review submitted", "review_id", saved.ID, "caravan_id", caravanID, "rating", rating)
	return saved, nil
}

func (s *ReviewService) hasStayed(userID, caravanID int64) bool {
	for _, r := range s.stays.FindByUser(userID) {
		if r.CaravanID == caravanID && r.Status == domain.StatusConfirmed {
			return true
		}
	}
	return false
}
