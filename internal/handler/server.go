// Package handler implements the HTTP API of the CaravanShare reservation
// engine. All handlers are methods on Server; they are split into
// resource-specific files (health.go, caravan.go, reservation.go, ...) and
// share the Server's dependencies. Router wires them into a chi mux.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// ReservationServicer is the booking side of the API.
type ReservationServicer interface {
	CreateReservation(ctx context.Context, userID, caravanID int64, start, end time.Time) (domain.Reservation, error)
	IsAvailable(caravanID int64, start, end time.Time) bool
	FindByUser(userID int64) []domain.Reservation
	Cancel(ctx context.Context, userID, reservationID int64) (domain.Reservation, error)
}

// CaravanServicer serves the catalogue.
type CaravanServicer interface {
	GetByID(ctx context.Context, id int64) (domain.Caravan, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Caravan, int)
}

// UserServicer registers and resolves users.
type UserServicer interface {
	Register(ctx context.Context, name, email string, balance decimal.Decimal) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// ReviewServicer accepts reviews.
type ReviewServicer interface {
	Submit(ctx context.Context, userID, caravanID int64, rating int, comment string) (domain.Review, error)
}

// Recommender suggests similar caravans.
type Recommender interface {
	Recommend(ctx context.Context, caravanID int64, limit int) ([]domain.Caravan, error)
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// Idempotency remembers request keys so a retried booking is not charged twice.
type Idempotency interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// HistoryReader reads a reservation's recorded lifecycle back from the ledger.
type HistoryReader interface {
	History(ctx context.Context, userID, reservationID int64) (domain.Reservation, []string, error)
}

// SocketServer upgrades an authenticated request to a notification socket.
type SocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID int64)
}

// Deps bundles everything Server needs. Every field is required except
// Sockets, which disables /ws when nil, and History, which disables
// /reservations/{id}/history when nil.
type Deps struct {
	Reservations    ReservationServicer
	Caravans        CaravanServicer
	Users           UserServicer
	Reviews         ReviewServicer
	Recommendations Recommender
	Tokens          TokenIssuer
	Idempotency     Idempotency
	Sockets         SocketServer
	History         HistoryReader
	Log             *slog.Logger
}

// Server holds the dependencies shared by every handler.
type Server struct {
	Deps
}

// NewServer constructs the Server with all its dependencies.
func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Server{Deps: deps}
}
