package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/typedsql/dialect"
)

// driverName returns the database/sql driver registered for dialect d.
func driverName(d string) (string, error) {
	switch d {
	case dialect.Postgres:
		return "postgres", nil
	case dialect.MySQL:
		return "mysql", nil
	case dialect.SQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported dialect %q", d)
}

func openDB(ctx context.Context, cfg *Config) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("missing data source name: set --dsn or " + EnvPrefix + "DSN")
	}
	name, err := driverName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Dialect, err)
	}
	return db, nil
}
