// Package sqlexec executes statements built with package dialect/sql and
// loads their results into records.
//
//	drv, err := sql.Open("postgres", dsn)
//	if err != nil {
//	    return err
//	}
//	c := sqlexec.New(drv, sqlexec.WithLogger(logger))
//	authors, err := c.Fetch(ctx, c.DSL().SelectFrom(testdb.Author))
package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/syssam/typedsql"
	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
)

// Context executes statements on a driver, or on a transaction when
// obtained from Transaction.
type Context struct {
	drv    dialect.Driver
	conn   dialect.ExecQuerier
	inTx   bool
	logger *slog.Logger
	cache  typedsql.Cache
	ttl    time.Duration
	// pending collects the tables modified by a transaction, invalidated
	// once it commits.
	pending *[]string
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger statements are traced to at sql.LevelTrace.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithCache caches fetched rows in cache for ttl. Statements modifying a
// table invalidate its cached results.
func WithCache(cache typedsql.Cache, ttl time.Duration) Option {
	return func(c *Context) {
		c.cache = cache
		c.ttl = ttl
	}
}

// New returns a Context executing on drv.
func New(drv dialect.Driver, opts ...Option) *Context {
	c := &Context{drv: drv, conn: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driver returns the underlying driver.
func (c *Context) Driver() dialect.Driver { return c.drv }

// Dialect returns the dialect of the driver.
func (c *Context) Dialect() string { return c.drv.Dialect() }

// DSL returns a statement builder for the dialect of the driver.
func (c *Context) DSL() *sql.DialectBuilder { return sql.Dialect(c.drv.Dialect()) }

// Transaction runs fn in a transaction. The transaction is committed when
// fn returns nil and rolled back otherwise, or when fn panics. Nested
// transactions fail with typedsql.ErrTxStarted.
func (c *Context) Transaction(ctx context.Context, fn func(tx *Context) error) (err error) {
	if c.inTx {
		return typedsql.ErrTxStarted
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("typedsql: begin transaction: %w", err)
	}
	txc := *c
	txc.conn, txc.inTx, txc.pending = tx, true, new([]string)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(&txc); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, &typedsql.RollbackError{Err: rerr})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("typedsql: commit transaction: %w", err)
	}
	c.invalidateTables(ctx, *txc.pending)
	return nil
}

// tabler is implemented by all statements targeting a table.
type tabler interface {
	Table() sql.Table
}

func label(q sql.Querier) string {
	if t, ok := q.(tabler); ok && t.Table() != nil {
		return t.Table().QualifiedName()
	}
	return "query"
}

// query runs q and returns its rows. The caller closes them.
func (c *Context) query(ctx context.Context, q sql.Querier) (*sql.Rows, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}
	query, args := q.Query()
	sql.TraceSQL(ctx, c.logger, q, "")
	rows := &sql.Rows{}
	if err := c.conn.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// exec runs q and invalidates the cached results of its table.
func (c *Context) exec(ctx context.Context, q sql.Querier) (sql.Result, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}
	query, args := q.Query()
	sql.TraceSQL(ctx, c.logger, q, "")
	var res sql.Result
	if err := c.conn.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	c.invalidate(ctx, q)
	return res, nil
}

// invalidate drops the cached results of the tables q modified. Inside a
// transaction they are dropped after commit.
func (c *Context) invalidate(ctx context.Context, q sql.Querier) {
	if c.cache == nil {
		return
	}
	tables := sql.TablesOf(q)
	if c.pending == nil {
		c.invalidateTables(ctx, tables)
		return
	}
	for _, t := range tables {
		if !slices.Contains(*c.pending, t) {
			*c.pending = append(*c.pending, t)
		}
	}
}

func (c *Context) invalidateTables(ctx context.Context, tables []string) {
	if c.cache == nil {
		return
	}
	for _, t := range tables {
		if err := c.cache.DeletePrefix(ctx, typedsql.TablePrefix(t)); err != nil {
			c.logger.WarnContext(ctx, "cache invalidation failed", "table", t, "error", err)
		}
	}
}

// cacheKeys returns one key of q per table it reads. A result is cached
// under all of them, so modifying any of its tables invalidates it.
// Statements reading no known table are not cached.
func cacheKeys(q sql.Querier, op string) []string {
	tables := sql.TablesOf(q)
	if len(tables) == 0 {
		return nil
	}
	query, args := q.Query()
	keys := make([]string, len(tables))
	for i, t := range tables {
		keys[i] = typedsql.CacheKey{Table: t, Operation: op, Query: query, Args: args}.String()
	}
	return keys
}

// cached returns the rows stored under keys, or nil when one of the keys
// was invalidated.
func (c *Context) cached(ctx context.Context, keys []string) [][]any {
	var data []byte
	for _, key := range keys {
		b, err := c.cache.Get(ctx, key)
		if err != nil || b == nil {
			return nil
		}
		if data == nil {
			data = b
		}
	}
	rows, err := typedsql.DecodeCachedRows(data)
	if err != nil {
		return nil
	}
	if rows.Rows == nil {
		return [][]any{}
	}
	return rows.Rows
}

// scan reads all rows of q as raw driver values, through the cache when
// one is configured.
func (c *Context) scan(ctx context.Context, q sql.Querier, op string) ([][]any, error) {
	var keys []string
	if c.cache != nil && !c.inTx {
		keys = cacheKeys(q, op)
		if len(keys) > 0 {
			if rows := c.cached(ctx, keys); rows != nil {
				return rows, nil
			}
		}
	}
	rows, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		cached := &typedsql.CachedRows{Columns: columns, Rows: out}
		if b, err := cached.Encode(); err == nil {
			for _, key := range keys {
				if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
					c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
				}
			}
		}
	}
	return out, nil
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values, nil
}
