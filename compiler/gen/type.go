package gen

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/schema"
)

type (
	// Schema is the generator's view of one database schema: the names of
	// the declarations it generates, and its tables sorted by name.
	Schema struct {
		// Name is the SQL name of the schema.
		Name string
		// VarName is the package variable holding the schema, e.g. "Test".
		VarName string
		// TypeName is the struct type of the schema, e.g. "TestSchema".
		TypeName string
		Tables   []*Table
	}

	// Table is the generator's view of a table.
	Table struct {
		Name       string
		Comment    string
		VarName    string // Author
		TypeName   string // AuthorTable
		RecordName string // AuthorRecord
		PrimaryKey *Key
		Columns    []*Column
	}

	// Key is a primary key and its columns in key order.
	Key struct {
		Name    string
		Columns []*Column
	}

	// Column is the generator's view of a table column.
	Column struct {
		Name     string
		Comment  string
		GoName   string
		DataType sql.DataType
	}
)

// Constructor returns the name of the unexported table constructor.
func (t *Table) Constructor() string { return "new" + t.TypeName }

// FileName returns the name of the file generated for the table.
func (t *Table) FileName() string { return fileName(t.Name) }

// FileName returns the name of the file generated for the schema root.
func (s *Schema) FileName() string { return fileName(s.Name) }

// GoType returns the Go type values of the column are read as.
func (c *Column) GoType() reflect.Type { return c.DataType.GoType() }

// Getter returns the name of the record getter.
func (c *Column) Getter() string { return c.GoName }

// Setter returns the name of the record setter.
func (c *Column) Setter() string { return "Set" + c.GoName }

// NewSchema checks s and computes the names of everything generated for it.
func NewSchema(s *sql.Schema) (*Schema, error) {
	if s == nil || s.Name() == "" {
		return nil, NewSchemaError("", "", "missing schema name", nil)
	}
	if result := schema.Check(s); result.HasErrors() {
		return nil, NewSchemaError("", "", "invalid definition of schema "+s.Name(), result.Err())
	}
	gs := &Schema{Name: s.Name(), VarName: pascal(s.Name())}
	gs.TypeName = gs.VarName + "Schema"
	if !validIdent(gs.VarName) {
		return nil, NewSchemaError("", "", fmt.Sprintf("schema name %q is not a valid Go identifier", s.Name()), nil)
	}
	// Package level declarations and the file each one comes from.
	declared := map[string]string{gs.VarName: s.Name(), gs.TypeName: s.Name()}
	files := map[string]string{gs.FileName(): s.Name()}
	tables := slices.SortedFunc(slices.Values(s.Tables()), func(a, b sql.Table) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	for _, t := range tables {
		gt, err := newTable(t)
		if err != nil {
			return nil, err
		}
		for _, name := range []string{gt.VarName, gt.TypeName, gt.RecordName, "New" + gt.RecordName, gt.Constructor()} {
			if other, ok := declared[name]; ok {
				return nil, NewSchemaError(t.Name(), "", fmt.Sprintf("generated name %s collides with %s", name, other), nil)
			}
			declared[name] = t.Name()
		}
		if other, ok := files[gt.FileName()]; ok {
			return nil, NewSchemaError(t.Name(), "", fmt.Sprintf("file %s collides with %s", gt.FileName(), other), nil)
		}
		files[gt.FileName()] = t.Name()
		gs.Tables = append(gs.Tables, gt)
	}
	return gs, nil
}

func newTable(t sql.Table) (*Table, error) {
	gt := &Table{Name: t.Name(), Comment: t.Comment(), VarName: pascal(t.Name())}
	if !validIdent(gt.VarName) {
		return nil, NewSchemaError(t.Name(), "", "table name is not a valid Go identifier", nil)
	}
	gt.TypeName = gt.VarName + "Table"
	gt.RecordName = gt.VarName + "Record"
	byName := make(map[string]*Column)
	goNames := make(map[string]string)
	for _, c := range t.Fields() {
		gc := &Column{Name: c.Name(), Comment: c.Comment(), GoName: columnName(c.Name()), DataType: c.DataType()}
		if !validIdent(gc.GoName) {
			return nil, NewSchemaError(t.Name(), c.Name(), "column name is not a valid Go identifier", nil)
		}
		if other, ok := goNames[gc.GoName]; ok {
			return nil, NewSchemaError(t.Name(), c.Name(), fmt.Sprintf("Go name %s collides with column %s", gc.GoName, other), nil)
		}
		if gc.GoType() == nil {
			return nil, NewSchemaError(t.Name(), c.Name(), "column has no Go type", nil)
		}
		goNames[gc.GoName] = c.Name()
		byName[c.Name()] = gc
		gt.Columns = append(gt.Columns, gc)
	}
	if pk := t.PrimaryKey(); pk != nil {
		gt.PrimaryKey = &Key{Name: pk.Name()}
		for _, name := range pk.FieldNames() {
			gt.PrimaryKey.Columns = append(gt.PrimaryKey.Columns, byName[name])
		}
	}
	return gt, nil
}
