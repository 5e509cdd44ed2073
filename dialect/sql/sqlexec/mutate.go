package sqlexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/typedsql"
	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
)

// RecordType is implemented by generated record types, which embed
// *sql.Record.
type RecordType interface {
	Base() *sql.Record
}

// Create constructs a record with newRecord, applies init, inserts it and
// returns it refreshed with the values stored in the database, defaults
// and identities included.
//
//	a, err := sqlexec.Create(ctx, c, testdb.NewAuthorRecord, func(a *testdb.AuthorRecord) {
//	    a.SetFirstName("Mark").SetLastName("Twain")
//	})
func Create[R RecordType](ctx context.Context, c *Context, newRecord func() R, init func(R)) (R, error) {
	r := newRecord()
	if init != nil {
		init(r)
	}
	if err := c.InsertAndRefresh(ctx, r.Base()); err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// UpsertNew constructs a record with newRecord, applies init and upserts
// it.
func UpsertNew[R RecordType](ctx context.Context, c *Context, newRecord func() R, init func(R)) (R, error) {
	r := newRecord()
	if init != nil {
		init(r)
	}
	if err := c.Upsert(ctx, r.Base()); err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// InsertAndRefresh inserts the changed fields of r and loads the stored
// row back into r. On MySQL, which has no RETURNING, the row is read back
// by primary key, using the last insert id for an unset identity.
func (c *Context) InsertAndRefresh(ctx context.Context, r *sql.Record) error {
	if err := c.insertAndRefresh(ctx, r); err != nil {
		return typedsql.NewMutationError(tableName(r), "insert", typedsql.AsConstraintError(err))
	}
	return nil
}

func (c *Context) insertAndRefresh(ctx context.Context, r *sql.Record) error {
	q := c.DSL().InsertRecord(r)
	if c.Dialect() != dialect.MySQL {
		return c.loadReturning(ctx, r, q.Returning(r.Fields()...))
	}
	res, err := c.exec(ctx, q)
	if err != nil {
		return err
	}
	if id := r.Table().Identity(); id != nil && !r.FieldChanged(id.Field().Name()) {
		last, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := r.Set(id.Field().Name(), last); err != nil {
			return err
		}
	}
	return c.refresh(ctx, r)
}

// loadReturning runs an INSERT ... RETURNING and loads the returned row
// into r. Without a returned row (an upsert that did nothing), r is read
// back by primary key.
func (c *Context) loadReturning(ctx context.Context, r *sql.Record, q *sql.InsertBuilder) error {
	rows, err := c.query(ctx, q)
	if err != nil {
		return err
	}
	var values []any
	if rows.Next() {
		values, err = scanValues(rows, r.Len())
	}
	err = errors.Join(err, rows.Err(), rows.Close())
	if err != nil {
		return err
	}
	c.invalidate(ctx, q)
	if values == nil {
		return c.refresh(ctx, r)
	}
	return r.Load(values)
}

// Refresh reloads r from the database by its primary key.
func (c *Context) Refresh(ctx context.Context, r *sql.Record) error {
	if err := c.refresh(ctx, r); err != nil {
		return typedsql.NewQueryError(tableName(r), "refresh", err)
	}
	return nil
}

func (c *Context) refresh(ctx context.Context, r *sql.Record) error {
	t := r.Table()
	if t == nil {
		return fmt.Errorf("record is not attached to a table")
	}
	pk := t.PrimaryKey()
	if pk == nil {
		return sql.ErrNoPrimaryKey
	}
	q := c.DSL().Select(r.Fields()...).From(t)
	// Key columns reference the aliased table; the statement selects from t.
	for _, name := range pk.FieldNames() {
		col := t.Field(name)
		if col == nil {
			return fmt.Errorf("primary key column %s not found in %s", name, t.QualifiedName())
		}
		q.Where(sql.EqOrIsNull(col, r.Value(name)))
	}
	rows, err := c.query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return typedsql.NewNotFoundError(t.QualifiedName())
	}
	values, err := scanValues(rows, r.Len())
	if err != nil {
		return err
	}
	return r.Load(values)
}

// UpdateRecord updates the changed fields of r, matching the row by its
// primary key, and returns the number of updated rows. The changed flags
// of r are left as they are.
func (c *Context) UpdateRecord(ctx context.Context, r *sql.Record) (int64, error) {
	return c.affected(ctx, c.DSL().UpdateRecord(r), "update")
}

// UpdateIfChanged runs UpdateRecord only when a value of r differs from
// the value it was loaded with. The boolean reports whether an update
// was executed.
func (c *Context) UpdateIfChanged(ctx context.Context, r *sql.Record) (int64, bool, error) {
	if !r.ValuesChanged() {
		return 0, false, nil
	}
	n, err := c.UpdateRecord(ctx, r)
	return n, true, err
}

// Upsert inserts r, or updates the changed non-key fields of the existing
// row with the same primary key, and loads the stored row into r.
func (c *Context) Upsert(ctx context.Context, r *sql.Record) error {
	if err := c.upsert(ctx, r); err != nil {
		return typedsql.NewMutationError(tableName(r), "upsert", typedsql.AsConstraintError(err))
	}
	return nil
}

func (c *Context) upsert(ctx context.Context, r *sql.Record) error {
	q := c.DSL().InsertRecord(r).OnConflictDoUpdate()
	if c.Dialect() != dialect.MySQL {
		return c.loadReturning(ctx, r, q.Returning(r.Fields()...))
	}
	if _, err := c.exec(ctx, q); err != nil {
		return err
	}
	return c.refresh(ctx, r)
}

func tableName(r *sql.Record) string {
	if t := r.Table(); t != nil {
		return t.QualifiedName()
	}
	return "record"
}
