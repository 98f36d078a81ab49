package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/vinayk94/iso-assist/internal/config"
	"github.com/vinayk94/iso-assist/internal/db"
)

// OpenTestDB connects to the postgres instance named by TEST_DB_HOST and
// applies migrations. Tests that call it are skipped when the variable is
// unset, so the pure-logic suite still runs anywhere.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "iso_assist",
		Password: "iso_assist_pass",
		DBName:   "iso_assist_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

// ResetTables clears query-pipeline tables so each test starts from an empty
// corpus.
func ResetTables(t *testing.T, conn *sql.DB) {
	t.Helper()
	for _, table := range []string{"embedding_cache", "embeddings", "chunks", "documents"} {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}
