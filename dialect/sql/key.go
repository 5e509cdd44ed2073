package sql

import "slices"

// UniqueKey is a unique constraint over a set of table columns.
type UniqueKey struct {
	name    string
	table   Table
	columns []*Column
	primary bool
}

// NewUniqueKey returns a unique key of t over the given columns.
func NewUniqueKey(name string, t Table, primary bool, columns ...*Column) *UniqueKey {
	return &UniqueKey{name: name, table: t, columns: columns, primary: primary}
}

// Name returns the constraint name.
func (k *UniqueKey) Name() string { return k.name }

// Table returns the table the key belongs to.
func (k *UniqueKey) Table() Table { return k.table }

// Fields returns the key columns.
func (k *UniqueKey) Fields() []*Column { return slices.Clone(k.columns) }

// IsPrimary reports whether the key is the primary key.
func (k *UniqueKey) IsPrimary() bool { return k.primary }

// FieldNames returns the names of the key columns.
func (k *UniqueKey) FieldNames() []string {
	names := make([]string, len(k.columns))
	for i, c := range k.columns {
		names[i] = c.Name()
	}
	return names
}

// Identity is the database-assigned column of a table.
type Identity struct {
	table  Table
	column *Column
}

// Table returns the table of the identity.
func (i *Identity) Table() Table { return i.table }

// Field returns the identity column.
func (i *Identity) Field() *Column { return i.column }
