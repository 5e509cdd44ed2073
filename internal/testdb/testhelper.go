package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database in t.TempDir() with the test schema
// attached and migrated, and registers its cleanup.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, "main.sqlite")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db, filepath.Join(dir, "test.sqlite")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
