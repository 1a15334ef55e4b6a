package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/pricing"
	"github.com/pkordes/caravan-share/internal/service"
	"github.com/pkordes/caravan-share/internal/store"
)

func newReviewService(f *fixture) (*service.ReviewService, *store.Store[domain.Review]) {
	reviews := store.New[domain.Review]()
	return service.NewReviewService(reviews, f.caravans, f.reservations, fixedNow, slog.New(slog.DiscardHandler)), reviews
}

func TestReviewService_Submit_UpdatesRating(t *testing.T) {
	f := newFixture(t, pricing.NoDiscount{})
	guest := f.addUser(t, "guest", "1000")
	c := f.addCaravan(t, "Sunrise", guest.ID)
	_, err := f.svc.CreateReservation(context.Background(), guest.ID, c.ID, day(1), day(3))
	require.NoError(t, err)
	svc, reviews := newReviewService(f)

	first, err := svc.Submit(context.Background(), guest.ID, c.ID, 5, " lovely ")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), guest.ID, c.ID, 2, "")
	require.NoError(t, err)

	assert.Equal(t, "lovely", first.Comment)
	assert.Equal(t, today, first.CreatedAt)
	assert.Equal(t, 2, reviews.Len())
	got, _ := f.caravans.FindByID(c.ID)
	assert.Equal(t, 2, got.ReviewCount)
	assert.InDelta(t, 3.5, got.AverageRating, 1e-9)
}

func TestReviewService_Submit_RequiresConfirmedStay(t *testing.T) {
	f := newFixture(t, nil)
	guest := f.addUser(t, "guest", "1000")
	c := f.addCaravan(t, "Sunrise", guest.ID)
	svc, _ := newReviewService(f)

	_, err := svc.Submit(context.Background(), guest.ID, c.ID, 4, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	res, err := f.svc.CreateReservation(context.Background(), guest.ID, c.ID, day(1), day(3))
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), guest.ID, res.ID)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), guest.ID, c.ID, 4, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "a cancelled stay does not count")
}

func TestReviewService_Submit_RatingOutOfRange(t *testing.T) {
	f := newFixture(t, nil)
	guest := f.addUser(t, "guest", "1000")
	c := f.addCaravan(t, "Sunrise", guest.ID)
	_, err := f.svc.CreateReservation(context.Background(), guest.ID, c.ID, day(1), day(3))
	require.NoError(t, err)
	svc, _ := newReviewService(f)

	for _, rating := range []int{0, 6} {
		_, err := svc.Submit(context.Background(), guest.ID, c.ID, rating, "")
		assert.ErrorIs(t, err, domain.ErrValidation, "rating %d", rating)
	}
	got, _ := f.caravans.FindByID(c.ID)
	assert.Zero(t, got.ReviewCount)
}

func TestReviewService_Submit_UnknownCaravan(t *testing.T) {
	f := newFixture(t, nil)
	guest := f.addUser(t, "guest", "1000")
	svc, _ := newReviewService(f)

	_, err := svc.Submit(context.Background(), guest.ID, 77, 4, "")

	var notFound *domain.CaravanNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
