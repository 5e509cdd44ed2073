package sql

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/inflect"
)

// Record holds the values of one row together with the values it was
// loaded with and a per-field changed flag.
type Record struct {
	table     Table
	fields    []Field
	values    []any
	originals []any
	touched   []bool
}

// NewRecord returns an empty record over all columns of t.
func NewRecord(t Table) *Record {
	cols := t.Fields()
	fields := make([]Field, len(cols))
	for i, c := range cols {
		fields[i] = c
	}
	return newRecord(t, fields)
}

// NewResultRecord returns an empty record over arbitrary fields, as
// produced by SELECT statements. t may be nil.
func NewResultRecord(t Table, fields []Field) *Record {
	return newRecord(t, slices.Clone(fields))
}

func newRecord(t Table, fields []Field) *Record {
	return &Record{
		table:     t,
		fields:    fields,
		values:    make([]any, len(fields)),
		originals: make([]any, len(fields)),
		touched:   make([]bool, len(fields)),
	}
}

// Base returns r. Types embedding *Record use it to expose the record.
func (r *Record) Base() *Record { return r }

// Table returns the table the record belongs to, nil for ad-hoc results.
func (r *Record) Table() Table { return r.table }

// Fields returns the fields of the record.
func (r *Record) Fields() []Field { return slices.Clone(r.fields) }

// Values returns a copy of the current values.
func (r *Record) Values() []any { return slices.Clone(r.values) }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

func (r *Record) index(name string) int {
	for i, f := range r.fields {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

// Set sets the value of the named field and marks it changed, even when
// the value equals the current one.
func (r *Record) Set(name string, v any) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("dialect/sql: unknown field %q in record", name)
	}
	r.values[i] = deref(v)
	r.touched[i] = true
	return nil
}

// MustSet is like Set but panics on unknown fields.
func (r *Record) MustSet(name string, v any) {
	if err := r.Set(name, v); err != nil {
		panic(err)
	}
}

// Value returns the value of the named field, nil if unset or unknown.
func (r *Record) Value(name string) any {
	if i := r.index(name); i >= 0 {
		return r.values[i]
	}
	return nil
}

// Original returns the value the named field was loaded with.
func (r *Record) Original(name string) any {
	if i := r.index(name); i >= 0 {
		return r.originals[i]
	}
	return nil
}

// ValueAt returns the value at position i.
func (r *Record) ValueAt(i int) any { return r.values[i] }

// Changed reports whether any field was set since the record was loaded.
func (r *Record) Changed() bool {
	return slices.Contains(r.touched, true)
}

// FieldChanged reports whether the named field was set.
func (r *Record) FieldChanged(name string) bool {
	i := r.index(name)
	return i >= 0 && r.touched[i]
}

// SetChanged sets the changed flag of all fields. Clearing the flags also
// makes the current values the original ones.
func (r *Record) SetChanged(changed bool) {
	for i := range r.touched {
		r.touched[i] = changed
	}
	if !changed {
		copy(r.originals, r.values)
	}
}

// ValuesChanged reports whether any field was set to a value different
// from its original value.
func (r *Record) ValuesChanged() bool {
	for i, touched := range r.touched {
		if touched && !valuesEqual(r.originals[i], r.values[i]) {
			return true
		}
	}
	return false
}

// ChangedFields returns the fields marked changed, in field order.
func (r *Record) ChangedFields() []Field {
	var out []Field
	for i, touched := range r.touched {
		if touched {
			out = append(out, r.fields[i])
		}
	}
	return out
}

// Load replaces the record values with a row read from the database,
// converting them to the field types, and clears the changed flags.
func (r *Record) Load(values []any) error {
	if len(values) != len(r.fields) {
		return fmt.Errorf("dialect/sql: record has %d fields, got %d values", len(r.fields), len(values))
	}
	for i, v := range values {
		cv, err := r.fields[i].DataType().Convert(v)
		if err != nil {
			return fmt.Errorf("dialect/sql: field %q: %w", r.fields[i].Name(), err)
		}
		r.values[i] = cv
	}
	r.SetChanged(false)
	return nil
}

// From copies the values of the fields other has in common with r and
// marks them changed.
func (r *Record) From(other *Record) {
	for i, f := range other.fields {
		if j := r.index(f.Name()); j >= 0 {
			r.values[j] = other.values[i]
			r.touched[j] = true
		}
	}
}

// Into maps the record onto the struct pointed to by dst. Struct fields
// match record fields by their `db` tag, or by their snake_case name.
// Fields without a match are left untouched.
func (r *Record) Into(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dialect/sql: Into expects a non-nil struct pointer, got %T", dst)
	}
	sv := rv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := columnName(sf)
		if name == "-" {
			continue
		}
		j := r.index(name)
		if j < 0 {
			continue
		}
		if err := assign(sv.Field(i), r.values[j]); err != nil {
			return fmt.Errorf("dialect/sql: field %s: %w", sf.Name, err)
		}
	}
	return nil
}

// columnRules keeps common initialisms together: "AuthorID" maps to
// "author_id", not "author_i_d". Longer acronyms come first.
var columnRules = func() *inflect.Ruleset {
	rs := inflect.NewDefaultRuleset()
	for _, a := range []string{"UUID", "JSON", "HTML", "HTTP", "URL", "SQL", "API", "ID"} {
		rs.AddAcronym(a)
	}
	return rs
}()

func columnName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("db"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}
	return columnRules.Underscore(sf.Name)
}

// assign stores v into dst, allocating pointers and converting between
// compatible kinds.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && src.Kind() != reflect.String && dst.Kind() != reflect.String:
		dst.Set(src.Convert(dst.Type()))
	case src.Kind() == reflect.String && dst.Kind() == reflect.String:
		dst.SetString(src.String())
	default:
		return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
	}
	return nil
}

// Get returns the value of f in r, or the zero value of T if it is NULL.
func Get[T any](r *Record, f Expression[T]) T {
	var zero T
	v := r.Value(f.Name())
	if v == nil {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	cv, err := f.DataType().Convert(v)
	if err != nil {
		return zero
	}
	t, _ := cv.(T)
	return t
}

// GetPtr returns the value of f in r, or nil if it is NULL.
func GetPtr[T any](r *Record, f Expression[T]) *T {
	if r.Value(f.Name()) == nil {
		return nil
	}
	v := Get(r, f)
	return &v
}

// Set sets the value of f in r.
func Set[T any](r *Record, f Expression[T], v T) {
	r.MustSet(f.Name(), v)
}

// SetPtr sets the value of f in r, nil meaning NULL.
func SetPtr[T any](r *Record, f Expression[T], v *T) {
	if v == nil {
		r.MustSet(f.Name(), nil)
		return
	}
	r.MustSet(f.Name(), *v)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case time.Time:
		b, ok := b.(time.Time)
		return ok && a.Equal(b)
	case []byte:
		b, ok := b.([]byte)
		return ok && bytes.Equal(a, b)
	}
	return reflect.DeepEqual(a, b)
}
