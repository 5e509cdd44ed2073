package sql

import "slices"

// Schema is a named, ordered collection of tables.
type Schema struct {
	name   string
	tables []Table
}

// NewSchema returns a schema holding the given tables in the given order.
// Non-aliased tables built on TableImpl are attached to the schema.
func NewSchema(name string, tables ...Table) *Schema {
	s := &Schema{name: name, tables: slices.Clone(tables)}
	for _, t := range tables {
		if a, ok := t.(interface{ attach(*Schema) }); ok {
			a.attach(s)
		}
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Tables returns the tables of the schema.
func (s *Schema) Tables() []Table {
	return slices.Clone(s.tables)
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) Table {
	for _, t := range s.tables {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Render implements QueryPart.
func (s *Schema) Render(b *Builder) { b.Ident(s.name) }
