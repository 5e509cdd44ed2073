package sql

import (
	"fmt"

	"github.com/syssam/typedsql/dialect"
)

// InsertBuilder is an INSERT statement builder.
type InsertBuilder struct {
	stmt
	table     Table
	columns   []Field
	values    [][]any
	upsert    bool
	returning []Field
}

// Set sets the value of a column in the (single) inserted row.
func (i *InsertBuilder) Set(f Field, v any) *InsertBuilder {
	if len(i.values) == 0 {
		i.values = append(i.values, nil)
	}
	for j, c := range i.columns {
		if c.Name() == f.Name() {
			i.values[0][j] = v
			return i
		}
	}
	i.columns = append(i.columns, f)
	i.values[0] = append(i.values[0], v)
	return i
}

// Columns sets the column list for multi-row inserts with Values.
func (i *InsertBuilder) Columns(fields ...Field) *InsertBuilder {
	i.columns = fields
	return i
}

// Values appends a row. The values must follow the order of Columns.
func (i *InsertBuilder) Values(vs ...any) *InsertBuilder {
	if len(vs) != len(i.columns) {
		i.addError(fmt.Errorf("dialect/sql: insert: got %d values for %d columns", len(vs), len(i.columns)))
		return i
	}
	i.values = append(i.values, vs)
	return i
}

// SetRecord sets the changed fields of r.
func (i *InsertBuilder) SetRecord(r *Record) *InsertBuilder {
	for _, f := range r.ChangedFields() {
		i.Set(f, r.Value(f.Name()))
	}
	return i
}

// OnConflictDoUpdate turns the insert into an upsert: on a primary key
// conflict, the inserted non-key columns overwrite the existing row.
func (i *InsertBuilder) OnConflictDoUpdate() *InsertBuilder {
	if i.table == nil || i.table.PrimaryKey() == nil {
		i.addError(fmt.Errorf("dialect/sql: upsert: %w", ErrNoPrimaryKey))
	}
	i.upsert = true
	return i
}

// Returning sets the columns returned by the statement. MySQL does not
// support RETURNING; the clause is omitted there.
func (i *InsertBuilder) Returning(fields ...Field) *InsertBuilder {
	i.returning = fields
	return i
}

// ReturningFields returns the fields set with Returning.
func (i *InsertBuilder) ReturningFields() []Field { return i.returning }

// Table returns the target table.
func (i *InsertBuilder) Table() Table { return i.table }

// AddError records an error returned by Err.
func (i *InsertBuilder) AddError(err error) *InsertBuilder {
	i.addError(err)
	return i
}

// Render implements QueryPart.
func (i *InsertBuilder) Render(b *Builder) {
	if i.table == nil {
		return
	}
	b.WriteString("INSERT INTO ")
	renderTableName(b, i.table)
	b.Unqualified(func(b *Builder) {
		if len(i.columns) == 0 {
			if b.Dialect() == dialect.MySQL {
				b.WriteString(" () VALUES ()")
			} else {
				b.WriteString(" DEFAULT VALUES")
			}
		} else {
			b.WriteString(" (").JoinComma(fieldParts(i.columns)...).WriteString(") VALUES ")
			for r, row := range i.values {
				if r > 0 {
					b.WriteString(", ")
				}
				b.Byte('(')
				for j, v := range row {
					if j > 0 {
						b.WriteString(", ")
					}
					b.Arg(v)
				}
				b.Byte(')')
			}
		}
		if i.upsert {
			i.renderUpsert(b)
		}
		if len(i.returning) > 0 && b.Dialect() != dialect.MySQL {
			b.WriteString(" RETURNING ").JoinComma(fieldParts(i.returning)...)
		}
	})
}

func (i *InsertBuilder) renderUpsert(b *Builder) {
	pk := i.table.PrimaryKey()
	if pk == nil {
		return
	}
	keys := make(map[string]bool)
	for _, c := range pk.Fields() {
		keys[c.Name()] = true
	}
	var updates []Field
	for _, c := range i.columns {
		if !keys[c.Name()] {
			updates = append(updates, c)
		}
	}
	if b.Dialect() == dialect.MySQL {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
		if len(updates) == 0 {
			c := pk.Fields()[0]
			b.Join(c).WriteString(" = ").Join(c)
			return
		}
		for j, c := range updates {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Join(c).WriteString(" = VALUES(").Join(c).Byte(')')
		}
		return
	}
	b.WriteString(" ON CONFLICT (")
	for j, c := range pk.Fields() {
		if j > 0 {
			b.WriteString(", ")
		}
		b.Join(c)
	}
	b.Byte(')')
	if len(updates) == 0 {
		b.WriteString(" DO NOTHING")
		return
	}
	b.WriteString(" DO UPDATE SET ")
	for j, c := range updates {
		if j > 0 {
			b.WriteString(", ")
		}
		b.Join(c).WriteString(" = EXCLUDED.").Join(c)
	}
}

// Query implements Querier.
func (i *InsertBuilder) Query() (string, []any) { return i.query(i) }

// Err implements Querier.
func (i *InsertBuilder) Err() error { return i.err(i) }

// String returns the statement with all values inlined.
func (i *InsertBuilder) String() string { return i.string(i) }

func fieldParts(fields []Field) []QueryPart {
	parts := make([]QueryPart, len(fields))
	for i, f := range fields {
		parts[i] = f
	}
	return parts
}
