package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/syssam/typedsql/dialect"
)

type (
	// Result is the result of an executed statement.
	Result = sql.Result
	// TxOptions configures BeginTx.
	TxOptions = sql.TxOptions
	// Rows holds the result of a query. The scanner is kept behind an
	// interface so Rows can be copied.
	Rows struct{ ColumnScanner }
)

// ColumnScanner is the subset of *sql.Rows used to read query results.
type ColumnScanner interface {
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Err() error
	Close() error
}

// ExecQuerier is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn adapts an ExecQuerier to dialect.ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect string
}

// Exec runs query with args, which must be a []any. v is nil or a
// *Result receiving the result.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	res, ok := v.(*Result)
	if v != nil && !ok {
		return fmt.Errorf("dialect/sql: exec: unexpected result type %T, want *sql.Result", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	r, err := c.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if res != nil {
		*res = r
	}
	return nil
}

// Query runs query with args, which must be a []any, and stores its rows
// in v, which must be a *Rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	rows, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: query: unexpected result type %T, want *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	r, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	rows.ColumnScanner = r
	return nil
}

func argList(args any) ([]any, error) {
	switch args := args.(type) {
	case nil:
		return nil, nil
	case []any:
		return args, nil
	}
	return nil, fmt.Errorf("dialect/sql: unexpected arguments type %T, want []any", args)
}

// Driver is the dialect.Driver of a *sql.DB.
type Driver struct {
	Conn
	db *sql.DB
}

// Open opens a database with database/sql. driverName must be registered
// by an imported driver (lib/pq "postgres", go-sql-driver "mysql",
// modernc "sqlite") and also names the dialect.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(driverName, db), nil
}

// OpenDB returns the Driver of an open database. Dialect names with a
// known prefix, such as "sqlite3", and "pgx" are accepted.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return &Driver{Conn: Conn{ExecQuerier: db, dialect: normalizeDialect(dialect)}, db: db}
}

func normalizeDialect(name string) string {
	if name == "pgx" {
		return dialect.Postgres
	}
	for _, d := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite} {
		if strings.HasPrefix(name, d) {
			return d
		}
	}
	return name
}

// DB returns the underlying database.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string { return d.dialect }

// Close closes the database.
func (d *Driver) Close() error { return d.db.Close() }

// Tx begins a transaction with the default options.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx begins a transaction with opts.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return &Tx{Conn: Conn{ExecQuerier: tx, dialect: d.dialect}, Tx: tx}, nil
}

// Tx is a transaction started by a Driver.
type Tx struct {
	Conn
	driver.Tx
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)
