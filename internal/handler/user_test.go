package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/handler"
)

func TestRegisterUser_returns201WithFormattedBalance(t *testing.T) {
	var gotBalance decimal.Decimal
	users := &mockUsers{
		register: func(_ context.Context, name, email string, balance decimal.Decimal) (domain.User, error) {
			gotBalance = balance
			return domain.User{ID: 7, Name: name, Email: email, Balance: balance}, nil
		},
	}
	h := newRouter(handler.Deps{Users: users})

	rec := do(t, h, http.MethodPost, "/users", "",
		`{"name":"Ana","email":"ana@example.com","balance":"1000"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[handler.User](t, rec)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "1000.00", u.Balance)
	assert.True(t, gotBalance.Equal(decimal.NewFromInt(1000)))
}

func TestRegisterUser_validationErrorIs422WithBareMessage(t *testing.T) {
	users := &mockUsers{
		register: func(context.Context, string, string, decimal.Decimal) (domain.User, error) {
			return domain.User{}, fmt.Errorf("service.UserService.Register: %w: invalid email", domain.ErrValidation)
		},
	}
	h := newRouter(handler.Deps{Users: users})

	rec := do(t, h, http.MethodPost, "/users", "", handler.RegisterUserRequest{Name: "Ana", Email: "nope"})

	detail := requireError(t, rec, http.StatusUnprocessableEntity, "validation_error")
	assert.Equal(t, "invalid email", detail.Message)
}

func TestRegisterUser_rejectsMalformedBody(t *testing.T) {
	h := newRouter(handler.Deps{Users: &mockUsers{}})

	requireError(t, do(t, h, http.MethodPost, "/users", "", `{"name":`), http.StatusUnprocessableEntity, "validation_error")
	requireError(t, do(t, h, http.MethodPost, "/users", "", `{"nickname":"x"}`), http.StatusUnprocessableEntity, "validation_error")
}

func TestRegisterUser_oversizedBodyIs413(t *testing.T) {
	h := newRouter(handler.Deps{Users: &mockUsers{}})
	name := make([]byte, testBodyLimit*2)
	for i := range name {
		name[i] = 'a'
	}

	rec := do(t, h, http.MethodPost, "/users", "", handler.RegisterUserRequest{Name: string(name)})

	requireError(t, rec, http.StatusRequestEntityTooLarge, "payload_too_large")
}

func TestIssueToken(t *testing.T) {
	expires := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	users := &mockUsers{
		getByEmail: func(_ context.Context, email string) (domain.User, error) {
			if email == "ana@example.com" {
				return domain.User{ID: 7, Email: email}, nil
			}
			return domain.User{}, fmt.Errorf("service.UserService.GetByEmail: %w", domain.ErrNotFound)
		},
	}
	tokens := &mockTokens{
		issue: func(userID int64) (string, time.Time, error) {
			return fmt.Sprintf("user-%d", userID), expires, nil
		},
	}
	h := newRouter(handler.Deps{Users: users, Tokens: tokens})

	t.Run("known email", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/auth/token", "", handler.TokenRequest{Email: "ana@example.com"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[handler.TokenResponse](t, rec)
		assert.Equal(t, "user-7", body.Token)
		assert.True(t, body.ExpiresAt.Equal(expires))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/auth/token", "", handler.TokenRequest{Email: "bob@example.com"})

		requireError(t, rec, http.StatusUnauthorized, "unauthorized")
	})
}
