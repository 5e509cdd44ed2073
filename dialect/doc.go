// Package dialect defines the driver abstraction shared by the typedsql runtime.
//
// Three SQL dialects are recognized:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect name decides identifier quoting, placeholder style and the
// rendering of dialect specific functions (interval arithmetic, epoch
// conversion, upserts) in package dialect/sql.
//
// # Driver Interface
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Exec and Query take their arguments as []any and write the result into v,
// which is either a *sql.Result (Exec) or a *sql.Rows (Query):
//
//	var rows sql.Rows
//	if err := drv.Query(ctx, "SELECT id FROM author", []any{}, &rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
//
// # Sub-packages
//
//   - dialect/sql: metadata model, query builders and the database/sql driver
//   - dialect/sql/sqlexec: execution of built queries and record mutators
//   - dialect/sql/schema: DDL planning, inspection and validation
//   - dialect/sql/sqlerr: classification of driver errors
package dialect
