package seed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/seed"
	"github.com/pkordes/caravan-share/internal/store"
)

func TestLoad_Demo(t *testing.T) {
	fx, err := seed.Load("testdata/demo.yaml")
	require.NoError(t, err)

	users := store.NewUserStore()
	caravans := store.New[domain.Caravan]()
	nUsers, nCaravans, err := fx.Apply(users, caravans)

	require.NoError(t, err)
	assert.Equal(t, 2, nUsers)
	assert.Equal(t, 4, nCaravans)

	host, ok := users.FindByEmail("HOST@example.com")
	require.True(t, ok)
	assert.Equal(t, int64(101), host.ID)

	vintage, ok := caravans.FindByID(2)
	require.True(t, ok)
	assert.Equal(t, "Campervan", vintage.Category)
	assert.Equal(t, "80.50", vintage.DailyRate.StringFixed(2))

	modern, _ := caravans.FindByID(1)
	assert.True(t, modern.DailyRate.IsZero())

	// Explicit ids move the counter: the next user is 102.
	next, err := users.Save(domain.User{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(102), next.ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := seed.Load("testdata/nope.yaml")

	assert.Error(t, err)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("users:\n  - id: 1\n    nickname: x\n"))

	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	fx, err := seed.Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, fx.Users)
}

func TestApply_BadMoney(t *testing.T) {
	fx, err := seed.Parse(strings.NewReader("users:\n  - name: A\n    email: a@example.com\n    balance: lots\n"))
	require.NoError(t, err)

	_, _, err = fx.Apply(store.NewUserStore(), store.New[domain.Caravan]())

	assert.Error(t, err)
}

func TestApply_InvalidEntity(t *testing.T) {
	fx, err := seed.Parse(strings.NewReader("caravans:\n  - id: 1\n    name: \"\"\n"))
	require.NoError(t, err)

	_, n, err := fx.Apply(store.NewUserStore(), store.New[domain.Caravan]())

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, n)
}
