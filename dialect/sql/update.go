package sql

import (
	"fmt"

	"github.com/syssam/typedsql/dialect"
)

// UpdateBuilder is an UPDATE statement builder.
type UpdateBuilder struct {
	stmt
	whereClause
	table     Table
	sets      []assignment
	returning []Field
}

type assignment struct {
	field Field
	value any
}

// Set sets a column to a value or expression.
func (u *UpdateBuilder) Set(f Field, v any) *UpdateBuilder {
	for i, a := range u.sets {
		if a.field.Name() == f.Name() {
			u.sets[i].value = v
			return u
		}
	}
	u.sets = append(u.sets, assignment{field: f, value: v})
	return u
}

// SetNull sets a column to NULL.
func (u *UpdateBuilder) SetNull(f Field) *UpdateBuilder {
	return u.Set(f, nil)
}

// SetRecord sets the changed fields of r.
func (u *UpdateBuilder) SetRecord(r *Record) *UpdateBuilder {
	for _, f := range r.ChangedFields() {
		u.Set(f, r.Value(f.Name()))
	}
	return u
}

// Where adds conditions joined with AND.
func (u *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	u.add(conds)
	return u
}

// Returning sets the columns returned by the statement (not MySQL).
func (u *UpdateBuilder) Returning(fields ...Field) *UpdateBuilder {
	u.returning = fields
	return u
}

// Table returns the target table.
func (u *UpdateBuilder) Table() Table { return u.table }

// AddError records an error returned by Err.
func (u *UpdateBuilder) AddError(err error) *UpdateBuilder {
	u.addError(err)
	return u
}

// Render implements QueryPart.
func (u *UpdateBuilder) Render(b *Builder) {
	if u.table == nil {
		return
	}
	if len(u.sets) == 0 {
		b.AddError(fmt.Errorf("dialect/sql: update %s: no columns to set", u.table.QualifiedName()))
	}
	b.WriteString("UPDATE ")
	renderTableName(b, u.table)
	b.WriteString(" SET ")
	b.Unqualified(func(b *Builder) {
		for i, a := range u.sets {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Join(a.field).WriteString(" = ").Arg(a.value)
		}
	})
	u.whereClause.render(b)
	if len(u.returning) > 0 && b.Dialect() != dialect.MySQL {
		b.Unqualified(func(b *Builder) {
			b.WriteString(" RETURNING ").JoinComma(fieldParts(u.returning)...)
		})
	}
}

// Query implements Querier.
func (u *UpdateBuilder) Query() (string, []any) { return u.query(u) }

// Err implements Querier.
func (u *UpdateBuilder) Err() error { return u.err(u) }

// String returns the statement with all values inlined.
func (u *UpdateBuilder) String() string { return u.string(u) }
