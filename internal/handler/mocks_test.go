package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/handler"
)

// Test doubles: set only the function fields a test needs. An unset field
// panics, which Recoverer turns into a 500 and the test fails loudly.

type mockReservations struct {
	create      func(ctx context.Context, userID, caravanID int64, start, end time.Time) (domain.Reservation, error)
	isAvailable func(caravanID int64, start, end time.Time) bool
	findByUser  func(userID int64) []domain.Reservation
	cancel      func(ctx context.Context, userID, reservationID int64) (domain.Reservation, error)
}

func (m *mockReservations) CreateReservation(ctx context.Context, userID, caravanID int64, start, end time.Time) (domain.Reservation, error) {
	return m.create(ctx, userID, caravanID, start, end)
}
func (m *mockReservations) IsAvailable(caravanID int64, start, end time.Time) bool {
	return m.isAvailable(caravanID, start, end)
}
func (m *mockReservations) FindByUser(userID int64) []domain.Reservation {
	return m.findByUser(userID)
}
func (m *mockReservations) Cancel(ctx context.Context, userID, reservationID int64) (domain.Reservation, error) {
	return m.cancel(ctx, userID, reservationID)
}

type mockCaravans struct {
	getByID func(ctx context.Context, id int64) (domain.Caravan, error)
	list    func(ctx context.Context, p domain.PaginationParams) ([]domain.Caravan, int)
}

func (m *mockCaravans) GetByID(ctx context.Context, id int64) (domain.Caravan, error) {
	return m.getByID(ctx, id)
}
func (m *mockCaravans) List(ctx context.Context, p domain.PaginationParams) ([]domain.Caravan, int) {
	return m.list(ctx, p)
}

type mockUsers struct {
	register   func(ctx context.Context, name, email string, balance decimal.Decimal) (domain.User, error)
	getByEmail func(ctx context.Context, email string) (domain.User, error)
}

func (m *mockUsers) Register(ctx context.Context, name, email string, balance decimal.Decimal) (domain.User, error) {
	return m.register(ctx, name, email, balance)
}
func (m *mockUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}

type mockReviews struct {
	submit func(ctx context.Context, userID, caravanID int64, rating int, comment string) (domain.Review, error)
}

func (m *mockReviews) Submit(ctx context.Context, userID, caravanID int64, rating int, comment string) (domain.Review, error) {
	return m.submit(ctx, userID, caravanID, rating, comment)
}

type mockRecommender struct {
	recommend func(ctx context.Context, caravanID int64, limit int) ([]domain.Caravan, error)
}

func (m *mockRecommender) Recommend(ctx context.Context, caravanID int64, limit int) ([]domain.Caravan, error) {
	return m.recommend(ctx, caravanID, limit)
}

type mockTokens struct {
	issue func(userID int64) (string, time.Time, error)
}

func (m *mockTokens) Issue(userID int64) (string, time.Time, error) { return m.issue(userID) }

// mockIdempotency remembers claimed keys unless claim is overridden.
type mockIdempotency struct {
	claim    func(ctx context.Context, key string) (bool, error)
	claimed  map[string]bool
	released []string
}

func (m *mockIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	if m.claim != nil {
		return m.claim(ctx, key)
	}
	if m.claimed == nil {
		m.claimed = map[string]bool{}
	}
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *mockIdempotency) Release(_ context.Context, key string) error {
	delete(m.claimed, key)
	m.released = append(m.released, key)
	return nil
}

type mockHistory struct {
	history func(ctx context.Context, userID, reservationID int64) (domain.Reservation, []string, error)
}

func (m *mockHistory) History(ctx context.Context, userID, reservationID int64) (domain.Reservation, []string, error) {
	return m.history(ctx, userID, reservationID)
}

// stubVerifier accepts tokens of the form "user-<id>".
type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (int64, error) {
	id, ok := strings.CutPrefix(raw, "user-")
	if !ok {
		return 0, fmt.Errorf("bad token %q", raw)
	}
	return strconv.ParseInt(id, 10, 64)
}

var (
	_ handler.ReservationServicer = (*mockReservations)(nil)
	_ handler.CaravanServicer     = (*mockCaravans)(nil)
	_ handler.UserServicer        = (*mockUsers)(nil)
	_ handler.ReviewServicer      = (*mockReviews)(nil)
	_ handler.Recommender         = (*mockRecommender)(nil)
	_ handler.TokenIssuer         = (*mockTokens)(nil)
	_ handler.Idempotency         = (*mockIdempotency)(nil)
	_ handler.HistoryReader       = (*mockHistory)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testBodyLimit = 1 << 10

// newRouter wires deps the same way main.go does, with the stub verifier.
func newRouter(deps handler.Deps) http.Handler {
	if deps.Idempotency == nil {
		deps.Idempotency = &mockIdempotency{}
	}
	return handler.Router(handler.NewServer(deps), handler.RouterConfig{
		CORSOrigins:  []string{"http://localhost:5173"},
		MaxBodyBytes: testBodyLimit,
		Verifier:     stubVerifier{},
		Log:          discardLogger(),
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// requireError asserts status and the code of the error body.
func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) handler.ErrorDetail {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[handler.ErrorResponse](t, rec)
	require.Equal(t, code, body.Error.Code)
	return body.Error
}

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}
