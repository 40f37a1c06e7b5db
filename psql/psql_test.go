package psql

import (
	"database/sql"
	"os"
	"testing"

	"github.com/ejacobg/seqlinks/report/storetest"
)

func TestAcceptance(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("Missing PG_DSN env var; skipping postgres-backed report store test suite")
	}

	s, err := NewStore(dsn)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	suite := storetest.Suite{
		S: s,
		BeforeEach: func(t *testing.T) {
			flushDB(t, s.db)
		},
	}

	suite.TestStore(t)

	if s.db != nil {
		flushDB(t, s.db)
		if err = s.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	}
}

func flushDB(t *testing.T, db *sql.DB) {
	if _, err := db.Exec("DELETE FROM reports"); err != nil {
		t.Fatalf("failed to delete reports: %v", err)
	}
}
