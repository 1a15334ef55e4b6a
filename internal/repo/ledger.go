// Package repo holds the Postgres access code of the engine. The in-memory
// stores stay the source of truth for bookings; the ledger here is a durable
// copy of every reservation and its lifecycle events for reporting.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepo persists reservation snapshots and their event history.
type LedgerRepo interface {
	// Record upserts the reservation row and appends one event of kind for it,
	// in a single statement.
	Record(ctx context.Context, r domain.Reservation, kind string) error

	// GetByID returns the latest snapshot, or domain.ErrNotFound.
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)

	// Events returns the event kinds recorded for a reservation, oldest first.
	Events(ctx context.Context, reservationID int64) ([]string, error)
}

type pgLedgerRepo struct {
	db db
}

// NewLedgerRepo constructs a LedgerRepo. In production pass *pgxpool.Pool;
// in tests pass a pgx.Tx.
func NewLedgerRepo(db db) LedgerRepo {
	return &pgLedgerRepo{db: db}
}

func (r *pgLedgerRepo) Record(ctx context.Context, res domain.Reservation, kind string) error {
	const q = `
		WITH upsert AS (
			INSERT INTO reservations (id, user_id, caravan_id, start_date, end_date, total_price, status, created_at)
			VALUES (@id, @user_id, @caravan_id, @start_date, @end_date, @total_price::numeric, @status, @created_at)
			ON CONFLICT (id) DO UPDATE
			SET status      = EXCLUDED.status,
			    total_price = EXCLUDED.total_price,
			    updated_at  = now()
			RETURNING id
		)
		INSERT INTO reservation_events (reservation_id, kind)
		SELECT id, @kind FROM upsert`

	args := pgx.NamedArgs{
		"id":          res.ID,
		"user_id":     res.UserID,
		"caravan_id":  res.CaravanID,
		"start_date":  res.StartDate,
		"end_date":    res.EndDate,
		"total_price": res.TotalPrice.StringFixed(2),
		"status":      string(res.Status),
		"created_at":  res.CreatedAt,
		"kind":        kind,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.LedgerRepo.Record: %w", err)
	}
	return nil
}

const selectReservation = `
	SELECT id, user_id, caravan_id, start_date, end_date, total_price::text, status, created_at
	FROM reservations`

func (r *pgLedgerRepo) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	row := r.db.QueryRow(ctx, selectReservation+` WHERE id = @id`, pgx.NamedArgs{"id": id})
	res, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.LedgerRepo.GetByID: %w", err)
	}
	return res, nil
}

func (r *pgLedgerRepo) Events(ctx context.Context, reservationID int64) ([]string, error) {
	const q = `
		SELECT kind FROM reservation_events
		WHERE reservation_id = @reservation_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"reservation_id": reservationID})
	if err != nil {
		return nil, fmt.Errorf("repo.LedgerRepo.Events: %w", err)
	}
	kinds, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repo.LedgerRepo.Events: %w", err)
	}
	return kinds, nil
}

// scanReservation maps the row into a domain.Reservation. Prices travel as
// text so no precision is lost on the way into decimal.
func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var (
		res        domain.Reservation
		start, end pgtype.Date
		price      string
		status     string
	)
	err := row.Scan(&res.ID, &res.UserID, &res.CaravanID, &start, &end, &price, &status, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	total, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("parse total_price %q: %w", price, err)
	}
	res.TotalPrice = total
	res.StartDate = domain.Day(start.Time)
	res.EndDate = domain.Day(end.Time)
	res.Status = domain.ReservationStatus(status)
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}
