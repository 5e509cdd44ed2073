package sql

import (
	"errors"
)

// ErrEmptyInList is returned by ContainedIn when called without values.
var ErrEmptyInList = errors.New("values in an IN condition can not be empty")

// Field is a named, typed SQL expression: a table column, a function call
// or an aliased expression.
type Field interface {
	QueryPart
	Name() string
	DataType() DataType
}

// Expression is a Field whose values map to the Go type T.
type Expression[T any] interface {
	Field
	goValue() T
}

// Column is an untyped table column.
type Column struct {
	name     string
	dataType DataType
	table    *TableImpl
	comment  string
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// DataType returns the column type.
func (c *Column) DataType() DataType { return c.dataType }

// Table returns the table the column belongs to.
func (c *Column) Table() *TableImpl { return c.table }

// Comment returns the column comment.
func (c *Column) Comment() string { return c.comment }

// SetComment sets the column comment.
func (c *Column) SetComment(comment string) *Column {
	c.comment = comment
	return c
}

// Render renders the column qualified with its table (or table alias).
func (c *Column) Render(b *Builder) {
	if !b.unqualified && c.table != nil {
		c.table.renderQualifier(b)
		b.Byte('.')
	}
	b.Ident(c.name)
}

// TypedField wraps a Field with predicates and helpers typed by T.
type TypedField[T any] struct {
	Field
}

// Typed returns f as a TypedField of T.
func Typed[T any](f Field) TypedField[T] {
	return TypedField[T]{Field: f}
}

func (f TypedField[T]) goValue() (v T) { return }

// EQ returns the condition "f = v".
func (f TypedField[T]) EQ(v T) Condition { return compare(f, "=", v) }

// NEQ returns the condition "f <> v".
func (f TypedField[T]) NEQ(v T) Condition { return compare(f, "<>", v) }

// GT returns the condition "f > v".
func (f TypedField[T]) GT(v T) Condition { return compare(f, ">", v) }

// GTE returns the condition "f >= v".
func (f TypedField[T]) GTE(v T) Condition { return compare(f, ">=", v) }

// LT returns the condition "f < v".
func (f TypedField[T]) LT(v T) Condition { return compare(f, "<", v) }

// LTE returns the condition "f <= v".
func (f TypedField[T]) LTE(v T) Condition { return compare(f, "<=", v) }

// EQField returns the condition "f = o".
func (f TypedField[T]) EQField(o Expression[T]) Condition { return compare(f, "=", o) }

// IsNull returns the condition "f IS NULL".
func (f TypedField[T]) IsNull() Condition { return nullCheck{left: f} }

// NotNull returns the condition "f IS NOT NULL".
func (f TypedField[T]) NotNull() Condition { return nullCheck{left: f, not: true} }

// In returns the condition "f IN (...)" with the values bound as parameters.
func (f TypedField[T]) In(vs ...T) Condition {
	return inList{left: f, values: toAny(vs)}
}

// NotIn returns the condition "f NOT IN (...)".
func (f TypedField[T]) NotIn(vs ...T) Condition {
	return inList{left: f, values: toAny(vs), not: true}
}

// ContainedIn returns the condition "f IN (...)" with the values inlined
// into the statement, which keeps the statement text free of a variable
// number of placeholders. It fails with ErrEmptyInList on no values.
func (f TypedField[T]) ContainedIn(vs ...T) (Condition, error) {
	if len(vs) == 0 {
		return nil, ErrEmptyInList
	}
	return inList{left: f, values: toAny(vs), inline: true}, nil
}

// As returns the field aliased as name.
func (f TypedField[T]) As(name string) TypedField[T] {
	return TypedField[T]{Field: fieldAlias{field: f.Field, alias: name}}
}

// Asc returns the ascending sort specification of f.
func (f TypedField[T]) Asc() SortField { return SortField{field: f} }

// Desc returns the descending sort specification of f.
func (f TypedField[T]) Desc() SortField { return SortField{field: f, desc: true} }

// TableField is a typed column of a table descriptor.
type TableField[T any] struct {
	TypedField[T]
	column *Column
}

// NewTableField adds a column to t and returns it as a typed field.
func NewTableField[T any](t *TableImpl, name string, dt DataType, comment string) TableField[T] {
	c := t.AddColumn(name, dt)
	c.comment = comment
	return TableField[T]{TypedField: TypedField[T]{Field: c}, column: c}
}

// Column returns the untyped column of f.
func (f TableField[T]) Column() *Column { return f.column }

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

type fieldAlias struct {
	field Field
	alias string
}

func (a fieldAlias) Name() string       { return a.alias }
func (a fieldAlias) DataType() DataType { return a.field.DataType() }

// Render renders the aliased definition inside SELECT lists, and
// a reference to the alias anywhere else.
func (a fieldAlias) Render(b *Builder) {
	if !b.declaring {
		b.Ident(a.alias)
		return
	}
	b.declaring = false
	b.Join(a.field)
	b.declaring = true
	b.WriteString(" AS ").Ident(a.alias)
}

// SortField is an ORDER BY specification.
type SortField struct {
	field Field
	desc  bool
}

// Render implements QueryPart.
func (s SortField) Render(b *Builder) {
	b.Join(s.field)
	if s.desc {
		b.WriteString(" DESC")
	} else {
		b.WriteString(" ASC")
	}
}

// expr is a computed field rendered by a function.
type expr struct {
	name     string
	dataType DataType
	render   func(*Builder)
}

func (e expr) Name() string       { return e.name }
func (e expr) DataType() DataType { return e.dataType }
func (e expr) Render(b *Builder)  { e.render(b) }

func newExpr[T any](name string, dt DataType, render func(*Builder)) TypedField[T] {
	return TypedField[T]{Field: expr{name: name, dataType: dt, render: render}}
}

// Val returns v as a bind value expression.
func Val[T any](v T, dt DataType) TypedField[T] {
	return newExpr[T]("val", dt, func(b *Builder) { b.Arg(v) })
}
