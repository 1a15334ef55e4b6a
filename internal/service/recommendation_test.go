package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/service"
	"github.com/pkordes/caravan-share/internal/store"
)

func names(cs []domain.Caravan) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func seedCatalogue(t *testing.T) *store.Store[domain.Caravan] {
	t.Helper()
	caravans := store.New[domain.Caravan]()
	for _, c := range []domain.Caravan{
		{Name: "target", OwnerID: 1, Category: "camper"},
		{Name: "other-owner-camper", OwnerID: 2, Category: "camper"},
		{Name: "same-owner-trailer", OwnerID: 1, Category: "trailer"},
		{Name: "unrelated", OwnerID: 3, Category: "trailer"},
		{Name: "same-owner-camper", OwnerID: 1, Category: "camper"},
		{Name: "second-camper", OwnerID: 4, Category: "camper"},
	} {
		_, err := caravans.Save(c)
		require.NoError(t, err)
	}
	return caravans
}

func TestRecommend_ScoresAndOrders(t *testing.T) {
	svc := service.NewRecommendationService(seedCatalogue(t))

	got, err := svc.Recommend(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"same-owner-camper",  // 3
		"other-owner-camper", // 2
		"second-camper",      // 2
		"same-owner-trailer", // 1
	}, names(got))
}

func TestRecommend_DefaultLimit(t *testing.T) {
	svc := service.NewRecommendationService(seedCatalogue(t))

	got, err := svc.Recommend(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Len(t, got, service.DefaultRecommendations)
}

func TestRecommend_CategoryMatchOnly(t *testing.T) {
	svc := service.NewRecommendationService(seedCatalogue(t))

	got, err := svc.Recommend(context.Background(), 4, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"same-owner-trailer"}, names(got))
}

func TestRecommend_UnknownCaravan(t *testing.T) {
	svc := service.NewRecommendationService(store.New[domain.Caravan]())

	_, err := svc.Recommend(context.Background(), 1, 3)

	var notFound *domain.CaravanNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
