package sqlexec

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/syssam/typedsql"
	"github.com/syssam/typedsql/dialect/sql"
)

// resultRecord returns an empty record for one row of q.
func resultRecord(q *sql.Selector) *sql.Record {
	return sql.NewResultRecord(q.Table(), q.Fields())
}

func (c *Context) fetch(ctx context.Context, q *sql.Selector, op string) ([]*sql.Record, error) {
	rows, err := c.scan(ctx, q, op)
	if err != nil {
		return nil, typedsql.NewQueryError(label(q), op, err)
	}
	records := make([]*sql.Record, len(rows))
	for i, values := range rows {
		r := resultRecord(q)
		if err := r.Load(values); err != nil {
			return nil, typedsql.NewQueryError(label(q), op, err)
		}
		records[i] = r
	}
	return records, nil
}

// Fetch executes q and returns one record per row.
func (c *Context) Fetch(ctx context.Context, q *sql.Selector) ([]*sql.Record, error) {
	return c.fetch(ctx, q, "fetch")
}

// FetchOne executes q and returns its only row. It fails with a
// NotFoundError when q returns no rows and a NotSingularError when it
// returns more than one.
func (c *Context) FetchOne(ctx context.Context, q *sql.Selector) (*sql.Record, error) {
	records, err := c.fetch(ctx, q, "fetch one")
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, typedsql.NewNotFoundError(label(q))
	case 1:
		return records[0], nil
	default:
		return nil, typedsql.NewNotSingularError(label(q), len(records))
	}
}

// FetchFirst executes q and returns its first row, or nil when q returns
// no rows.
func (c *Context) FetchFirst(ctx context.Context, q *sql.Selector) (*sql.Record, error) {
	records, err := c.fetch(ctx, q, "fetch first")
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// Exec executes q and returns the number of affected rows.
func (c *Context) Exec(ctx context.Context, q sql.Querier) (int64, error) {
	return c.affected(ctx, q, "exec")
}

func (c *Context) affected(ctx context.Context, q sql.Querier, op string) (int64, error) {
	res, err := c.exec(ctx, q)
	if err != nil {
		return 0, typedsql.NewMutationError(label(q), op, typedsql.AsConstraintError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, typedsql.NewMutationError(label(q), op, err)
	}
	return n, nil
}

// FetchValues executes q and returns the first value of every row.
// NULLs are returned as the zero value of T.
func FetchValues[T any](ctx context.Context, c *Context, q *sql.Selector) ([]T, error) {
	records, err := c.fetch(ctx, q, "fetch values")
	if err != nil {
		return nil, err
	}
	out := make([]T, len(records))
	for i, r := range records {
		if out[i], err = valueAs[T](r.ValueAt(0)); err != nil {
			return nil, typedsql.NewQueryError(label(q), "fetch values", err)
		}
	}
	return out, nil
}

// FetchValue executes q and returns the first value of its first row. It
// fails with a NotFoundError when q returns no rows.
func FetchValue[T any](ctx context.Context, c *Context, q *sql.Selector) (T, error) {
	v, err := FetchValueOrNil[T](ctx, c, q)
	if err != nil {
		var zero T
		return zero, err
	}
	if v == nil {
		var zero T
		return zero, typedsql.NewNotFoundError(label(q))
	}
	return *v, nil
}

// FetchValueOrNil is like FetchValue but returns nil when q returns no
// rows or the value is NULL.
func FetchValueOrNil[T any](ctx context.Context, c *Context, q *sql.Selector) (*T, error) {
	r, err := c.FetchFirst(ctx, q)
	if err != nil || r == nil || r.ValueAt(0) == nil {
		return nil, err
	}
	v, err := valueAs[T](r.ValueAt(0))
	if err != nil {
		return nil, typedsql.NewQueryError(label(q), "fetch value", err)
	}
	return &v, nil
}

// FetchInto executes q and maps every row into a T with Record.Into.
func FetchInto[T any](ctx context.Context, c *Context, q *sql.Selector) ([]T, error) {
	records, err := c.fetch(ctx, q, "fetch into")
	if err != nil {
		return nil, err
	}
	out := make([]T, len(records))
	for i, r := range records {
		if err := r.Into(&out[i]); err != nil {
			return nil, typedsql.NewQueryError(label(q), "fetch into", err)
		}
	}
	return out, nil
}

// Iterate executes q when iterated and yields the rows mapped into T one
// by one. Rows are read lazily and released when the loop ends.
//
//	for a, err := range sqlexec.Iterate[Author](ctx, c, q) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func Iterate[T any](ctx context.Context, c *Context, q *sql.Selector) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		fail := func(err error) { yield(zero, typedsql.NewQueryError(label(q), "iterate", err)) }
		rows, err := c.query(ctx, q)
		if err != nil {
			fail(err)
			return
		}
		defer rows.Close()
		n := len(q.Fields())
		for rows.Next() {
			values, err := scanValues(rows, n)
			if err != nil {
				fail(err)
				return
			}
			r := resultRecord(q)
			var v T
			if err := r.Load(values); err != nil {
				fail(err)
				return
			}
			if err := r.Into(&v); err != nil {
				fail(err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			fail(err)
		}
	}
}

// valueAs asserts v to T, converting between convertible kinds.
func valueAs[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	rv, target := reflect.ValueOf(v), reflect.TypeOf(zero)
	if target != nil && rv.Type().ConvertibleTo(target) && rv.Kind() != reflect.String {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, fmt.Errorf("cannot use %T as %T", v, zero)
}
