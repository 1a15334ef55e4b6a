package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkordes/caravan-share/internal/domain"
)

// DefaultRecommendations is the result size when the caller asks for none.
const DefaultRecommendations = 3

// Scores awarded per shared attribute.
const (
	sameCategoryScore = 2
	sameOwnerScore    = 1
)

// RecommendationService suggests caravans similar to one the user is viewing.
type RecommendationService struct {
	caravans CaravanLister
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(caravans CaravanLister) *RecommendationService {
	return &RecommendationService{caravans: caravans}
}

// Recommend returns up to limit caravans scored against caravanID: two points
// for the same category, one for the same owner. Caravans scoring zero are
// left out. Ties keep catalogue order.
func (s *RecommendationService) Recommend(_ context.Context, caravanID int64, limit int) ([]domain.Caravan, error) {
	target, ok := s.caravans.FindByID(caravanID)
	if !ok {
		return nil, fmt.Errorf("service.RecommendationService.Recommend: %w", &domain.CaravanNotFoundError{CaravanID: caravanID})
	}
	if limit <= 0 {
		limit = DefaultRecommendations
	}

	type scored struct {
		caravan domain.Caravan
		score   int
	}
	var candidates []scored
	for _, c := range s.caravans.FindAll() {
		if c.ID == target.ID {
			continue
		}
		score := 0
		if target.Category != "" && c.Category == target.Category {
			score += sameCategoryScore
		}
		if c.OwnerID == target.OwnerID {
			score += sameOwnerScore
		}
		if score > 0 {
			candidates = append(candidates, scored{caravan: c, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]domain.Caravan, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.caravan)
	}
	return out, nil
}
