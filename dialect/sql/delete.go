package sql

// DeleteBuilder is a DELETE statement builder.
type DeleteBuilder struct {
	stmt
	whereClause
	table Table
}

// Where adds conditions joined with AND.
func (d *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	d.add(conds)
	return d
}

// Table returns the target table.
func (d *DeleteBuilder) Table() Table { return d.table }

// Render implements QueryPart.
func (d *DeleteBuilder) Render(b *Builder) {
	if d.table == nil {
		return
	}
	b.WriteString("DELETE FROM ")
	renderTableName(b, d.table)
	d.whereClause.render(b)
}

// Query implements Querier.
func (d *DeleteBuilder) Query() (string, []any) { return d.query(d) }

// Err implements Querier.
func (d *DeleteBuilder) Err() error { return d.err(d) }

// String returns the statement with all values inlined.
func (d *DeleteBuilder) String() string { return d.string(d) }
