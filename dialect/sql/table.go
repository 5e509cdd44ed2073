package sql

import (
	"fmt"
	"slices"
)

// Table describes a database table, or an aliased reference to one.
type Table interface {
	QueryPart
	// Name returns the table name (not the alias).
	Name() string
	// SchemaName returns the name of the owning schema, empty if none.
	SchemaName() string
	// Alias returns the alias, empty for non-aliased tables.
	Alias() string
	// QualifiedName returns "schema.name".
	QualifiedName() string
	// Schema returns the owning schema, nil for aliased tables.
	Schema() *Schema
	// Fields returns the columns in declaration order.
	Fields() []*Column
	// Field returns the column with the given name, or nil.
	Field(name string) *Column
	// PrimaryKey returns the primary key, or nil.
	PrimaryKey() *UniqueKey
	// Identity returns the identity column, or nil.
	Identity() *Identity
	// Aliased returns the table this one aliases, nil if not aliased.
	Aliased() Table
	// Comment returns the table comment.
	Comment() string
}

// TableImpl is the base implementation of Table. Generated descriptors
// embed it; it is also used directly for tables built at runtime.
type TableImpl struct {
	name       string
	schemaName string
	alias      string
	aliased    Table
	comment    string
	columns    []*Column
	pkName     string
	pkColumns  []string
	owner      *Schema
}

// TableOption configures a TableImpl.
type TableOption func(*TableImpl)

// TableAlias makes the table an alias of t.
func TableAlias(alias string, t Table) TableOption {
	return func(ti *TableImpl) {
		ti.alias = alias
		ti.aliased = t
	}
}

// TableComment sets the table comment.
func TableComment(comment string) TableOption {
	return func(ti *TableImpl) {
		ti.comment = comment
	}
}

// TablePrimaryKey declares the primary key over the given column names.
func TablePrimaryKey(name string, columns ...string) TableOption {
	return func(ti *TableImpl) {
		ti.pkName = name
		ti.pkColumns = columns
	}
}

// NewTable returns a table descriptor without columns. Columns are added
// with AddColumn (or NewTableField for typed descriptors).
func NewTable(schema, name string, opts ...TableOption) *TableImpl {
	t := &TableImpl{name: name, schemaName: schema}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddColumn appends a column to the table. Adding a column whose name is
// already used replaces its type.
func (t *TableImpl) AddColumn(name string, dt DataType) *Column {
	if c := t.Field(name); c != nil {
		c.dataType = dt
		return c
	}
	c := &Column{name: name, dataType: dt, table: t}
	t.columns = append(t.columns, c)
	return c
}

// SetPrimaryKey declares the primary key over the given column names.
func (t *TableImpl) SetPrimaryKey(name string, columns ...string) *TableImpl {
	t.pkName = name
	t.pkColumns = columns
	return t
}

// SetComment sets the table comment.
func (t *TableImpl) SetComment(comment string) *TableImpl {
	t.comment = comment
	return t
}

func (t *TableImpl) Name() string       { return t.name }
func (t *TableImpl) SchemaName() string { return t.schemaName }
func (t *TableImpl) Alias() string      { return t.alias }
func (t *TableImpl) Aliased() Table     { return t.aliased }
func (t *TableImpl) Comment() string    { return t.comment }

// IsAliased reports whether t is an alias of another table.
func (t *TableImpl) IsAliased() bool { return t.aliased != nil }

// QualifiedName implements Table.
func (t *TableImpl) QualifiedName() string {
	if t.schemaName == "" {
		return t.name
	}
	return t.schemaName + "." + t.name
}

// Schema implements Table.
func (t *TableImpl) Schema() *Schema {
	if t.IsAliased() {
		return nil
	}
	return t.owner
}

func (t *TableImpl) attach(s *Schema) {
	if t.owner == nil && !t.IsAliased() {
		t.owner = s
	}
}

// Fields implements Table.
func (t *TableImpl) Fields() []*Column {
	return slices.Clone(t.columns)
}

// Field implements Table.
func (t *TableImpl) Field(name string) *Column {
	for _, c := range t.columns {
		if c.name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary key. For aliases, the key references the
// columns of the aliased table.
func (t *TableImpl) PrimaryKey() *UniqueKey {
	var root Table = t
	if t.aliased != nil {
		return t.aliased.PrimaryKey()
	}
	if t.pkName == "" && len(t.pkColumns) == 0 {
		return nil
	}
	cols := make([]*Column, 0, len(t.pkColumns))
	for _, name := range t.pkColumns {
		if c := t.Field(name); c != nil {
			cols = append(cols, c)
		}
	}
	return NewUniqueKey(t.pkName, root, true, cols...)
}

// Identity implements Table.
func (t *TableImpl) Identity() *Identity {
	for _, c := range t.columns {
		if c.dataType.Identity() {
			return &Identity{table: t, column: c}
		}
	}
	return nil
}

// As returns a copy of t aliased as alias. Aliasing an alias aliases the
// original table.
func (t *TableImpl) As(alias string) *TableImpl {
	var root Table = t
	if t.aliased != nil {
		root = t.aliased
	}
	return t.copy(t.name, TableAlias(alias, root))
}

// Rename returns a non-aliased copy of t with the given name.
func (t *TableImpl) Rename(name string) *TableImpl {
	return t.copy(name)
}

func (t *TableImpl) copy(name string, opts ...TableOption) *TableImpl {
	opts = append([]TableOption{TableComment(t.comment), TablePrimaryKey(t.pkName, t.pkColumns...)}, opts...)
	c := NewTable(t.schemaName, name, opts...)
	for _, col := range t.columns {
		c.AddColumn(col.name, col.dataType).comment = col.comment
	}
	return c
}

// Render renders the table reference of FROM and JOIN clauses.
func (t *TableImpl) Render(b *Builder) {
	b.addTable(t)
	t.renderName(b)
	if t.IsAliased() {
		b.WriteString(" AS ").Ident(t.alias)
	}
}

func (t *TableImpl) renderName(b *Builder) {
	if t.schemaName != "" {
		b.Ident(t.schemaName).Byte('.')
	}
	b.Ident(t.name)
}

// renderQualifier renders the prefix of qualified column references.
func (t *TableImpl) renderQualifier(b *Builder) {
	if t.IsAliased() {
		b.Ident(t.alias)
		return
	}
	t.renderName(b)
}

// String implements fmt.Stringer.
func (t *TableImpl) String() string {
	if t.IsAliased() {
		return fmt.Sprintf("%s AS %s", t.QualifiedName(), t.alias)
	}
	return t.QualifiedName()
}

// renderTableName renders the name of the table a statement targets,
// unwrapping aliases.
func renderTableName(b *Builder, t Table) {
	if a := t.Aliased(); a != nil {
		t = a
	}
	b.addTable(t)
	if s := t.SchemaName(); s != "" {
		b.Ident(s).Byte('.')
	}
	b.Ident(t.Name())
}

var _ Table = (*TableImpl)(nil)
