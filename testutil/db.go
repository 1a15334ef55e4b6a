// Package testutil provides shared helpers for integration tests.
// Every helper skips the calling test when its backing service is not
// configured, so the unit suite runs without Postgres or Redis.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver for database/sql
)

// DatabaseEnv names the variable holding the integration database DSN.
const DatabaseEnv = "TEST_DATABASE_URL"

// DSN returns the integration database DSN or skips t.
func DSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DatabaseEnv)
	if dsn == "" {
		t.Skip(DatabaseEnv + " not set; skipping integration test")
	}
	return dsn
}

// NewPool returns a pgx pool on the integration database, closed when t ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, DSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	return pool
}

// NewSQLDB returns a database/sql handle on the integration database, which
// goose needs. It is closed when t ends.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLDB(DSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// OpenSQLDB opens and pings a database/sql handle for dsn. It serves
// TestMain, which has no *testing.T; the caller closes the handle.
func OpenSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("testutil.OpenSQLDB: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("testutil.OpenSQLDB: ping: %w", err)
	}
	return db, nil
}
