package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/caravan-share/migrations"
	"github.com/pkordes/caravan-share/testutil"
)

// TestMain migrates the integration database once for the package. Without
// TEST_DATABASE_URL every test skips on its own.
func TestMain(m *testing.M) {
	if dsn := os.Getenv(testutil.DatabaseEnv); dsn != "" {
		db, err := testutil.OpenSQLDB(dsn)
		if err != nil {
			log.Fatalf("repo TestMain: %v", err)
		}
		if _, err := migrations.Up(context.Background(), db); err != nil {
			log.Fatalf("repo TestMain: %v", err)
		}
		_ = db.Close()
	}
	os.Exit(m.Run())
}
