package store_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/store"
)

func TestStore_Save_AssignsIncreasingIDsWithoutGaps(t *testing.T) {
	s := store.New[domain.Caravan]()

	var ids []int64
	for _, name := range []string{"Modern", "Vintage", "Family", "Off-road"} {
		c, err := s.Save(domain.Caravan{Name: name})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestStore_Save_ExplicitIDMovesCounterPastIt(t *testing.T) {
	s := store.New[domain.Caravan]()

	_, err := s.Save(domain.Caravan{ID: 10, Name: "Seeded"})
	require.NoError(t, err)
	next, err := s.Save(domain.Caravan{Name: "New"})
	require.NoError(t, err)

	assert.Equal(t, int64(11), next.ID)
}

func TestStore_Save_UpsertKeepsInsertionOrder(t *testing.T) {
	s := store.New[domain.Caravan]()
	a, _ := s.Save(domain.Caravan{Name: "A"})
	_, _ = s.Save(domain.Caravan{Name: "B"})

	a.Name = "A2"
	_, err := s.Save(a)
	require.NoError(t, err)

	all := s.FindAll()
	require.Len(t, all, 2)
	assert.Equal(t, "A2", all[0].Name)
	assert.Equal(t, "B", all[1].Name)
}

func TestStore_Save_RejectsInvalidEntity(t *testing.T) {
	s := store.New[domain.Caravan]()

	_, err := s.Save(domain.Caravan{Name: "  "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, s.Len())
}

func TestStore_FindByID(t *testing.T) {
	s := store.New[domain.Caravan]()
	saved, _ := s.Save(domain.Caravan{Name: "Modern"})

	got, ok := s.FindByID(saved.ID)
	require.True(t, ok)
	assert.Equal(t, saved, got)

	_, ok = s.FindByID(99)
	assert.False(t, ok)
}

func TestStore_Update_ErrorLeavesEntityUnchanged(t *testing.T) {
	s := store.New[domain.Caravan]()
	saved, _ := s.Save(domain.Caravan{Name: "Modern"})

	_, err := s.Update(saved.ID, func(c domain.Caravan) (domain.Caravan, error) {
		c.Name = ""
		return c, nil
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, _ := s.FindByID(saved.ID)
	assert.Equal(t, "Modern", got.Name)

	_, err = s.Update(42, func(c domain.Caravan) (domain.Caravan, error) { return c, nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := store.New[domain.Caravan]()
	a, _ := s.Save(domain.Caravan{Name: "A"})
	b, _ := s.Save(domain.Caravan{Name: "B"})

	assert.True(t, s.Delete(a.ID))
	assert.False(t, s.Delete(a.ID))

	all := s.FindAll()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	c, _ := s.Save(domain.Caravan{Name: "C"})
	assert.Equal(t, int64(3), c.ID, "identities are never reused")
}

func TestStore_Save_ConcurrentCallersGetDistinctIDs(t *testing.T) {
	s := store.New[domain.Caravan]()
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Save(domain.Caravan{Name: "c"})
			if err == nil {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing id %d", i)
	}
}
