package sql

import (
	"errors"
	"fmt"
)

// ErrNoPrimaryKey is returned when a statement needs the primary key of a
// table that does not declare one.
var ErrNoPrimaryKey = errors.New("table has no primary key")

// ErrNoChanges is returned when updating a record without changed fields.
var ErrNoChanges = errors.New("record has no changed fields")

// Querier is implemented by complete statements.
type Querier interface {
	QueryPart
	// Query returns the statement and its arguments.
	Query() (string, []any)
	// Err returns the errors found while building or rendering.
	Err() error
}

// DialectBuilder creates statements for one dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect returns a DialectBuilder for the given dialect.
//
//	b := sql.Dialect(dialect.Postgres)
//	q := b.SelectFrom(testdb.Author).Where(testdb.Author.ID.EQ(1))
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: normalizeDialect(name)}
}

// Name returns the dialect name.
func (d *DialectBuilder) Name() string { return d.dialect }

// Select starts a SELECT of the given fields.
func (d *DialectBuilder) Select(fields ...Field) *Selector {
	return &Selector{stmt: stmt{dialect: d.dialect}, fields: fields}
}

// SelectFrom starts a SELECT of all columns of t.
func (d *DialectBuilder) SelectFrom(t Table) *Selector {
	return d.Select().From(t)
}

// InsertInto starts an INSERT into t.
func (d *DialectBuilder) InsertInto(t Table) *InsertBuilder {
	return &InsertBuilder{stmt: stmt{dialect: d.dialect}, table: t}
}

// Update starts an UPDATE of t.
func (d *DialectBuilder) Update(t Table) *UpdateBuilder {
	return &UpdateBuilder{stmt: stmt{dialect: d.dialect}, table: t}
}

// DeleteFrom starts a DELETE from t.
func (d *DialectBuilder) DeleteFrom(t Table) *DeleteBuilder {
	return &DeleteBuilder{stmt: stmt{dialect: d.dialect}, table: t}
}

// InsertRecord returns an INSERT of the changed fields of r into its table.
func (d *DialectBuilder) InsertRecord(r *Record) *InsertBuilder {
	ib := d.InsertInto(r.Table())
	if r.Table() == nil {
		ib.AddError(fmt.Errorf("dialect/sql: insert: record is not attached to a table"))
		return ib
	}
	return ib.SetRecord(r)
}

// UpdateRecord returns an UPDATE of the changed fields of r, matching the
// row by its primary key. It fails with ErrNoPrimaryKey if the table has
// none, and with ErrNoChanges if no field was changed.
func (d *DialectBuilder) UpdateRecord(r *Record) *UpdateBuilder {
	ub := d.Update(r.Table())
	if r.Table() == nil {
		return ub.AddError(fmt.Errorf("dialect/sql: update: record is not attached to a table"))
	}
	pk := r.Table().PrimaryKey()
	if pk == nil {
		return ub.AddError(fmt.Errorf("dialect/sql: update %s: %w", r.Table().QualifiedName(), ErrNoPrimaryKey))
	}
	ub.SetRecord(r)
	if len(ub.sets) == 0 {
		ub.AddError(fmt.Errorf("dialect/sql: update %s: %w", r.Table().QualifiedName(), ErrNoChanges))
	}
	for _, c := range pk.Fields() {
		ub.Where(EqOrIsNull(c, r.Value(c.Name())))
	}
	return ub
}

// stmt holds what all statements share.
type stmt struct {
	dialect string
	errs    []error
}

// addError records a build error, returned by Err.
func (s *stmt) addError(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

func (s *stmt) query(q QueryPart) (string, []any) {
	b := NewBuilder(s.dialect, ParamIndexed)
	b.Join(q)
	return b.Query()
}

func (s *stmt) err(q QueryPart) error {
	b := NewBuilder(s.dialect, ParamIndexed)
	b.Join(q)
	return errors.Join(append(s.errs[:len(s.errs):len(s.errs)], b.Err())...)
}

func (s *stmt) string(q QueryPart) string {
	return InlinedFor(s.dialect, q)
}

// Dialect returns the dialect of the statement.
func (s *stmt) Dialect() string { return s.dialect }

// whereClause accumulates WHERE conditions.
type whereClause struct {
	conds []Condition
}

func (w *whereClause) add(conds []Condition) {
	for _, c := range conds {
		if c != nil {
			w.conds = append(w.conds, c)
		}
	}
}

func (w *whereClause) render(b *Builder) {
	if c := And(w.conds...); c != nil {
		b.WriteString(" WHERE ").Join(c)
	}
}
