package testdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Migrate attaches the test schema to the SQLite database db and runs the
// migrations against it. Attached databases are per connection, so db must
// be limited to a single open connection.
func Migrate(ctx context.Context, db *sql.DB, path string) error {
	if _, err := db.ExecContext(ctx, "ATTACH DATABASE ? AS test", path); err != nil {
		return fmt.Errorf("attach test schema: %w", err)
	}
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
