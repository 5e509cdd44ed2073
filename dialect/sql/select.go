package sql

import (
	"errors"
	"strconv"

	"github.com/syssam/typedsql/dialect"
)

var errNoJoin = errors.New("dialect/sql: On called without a preceding join")

// Selector is a SELECT statement builder.
type Selector struct {
	stmt
	whereClause
	fields   []Field
	from     []Table
	joins    []join
	orderBy  []QueryPart
	groupBy  []Field
	distinct bool
	limit    *int
	offset   *int
	forUpd   bool
}

type join struct {
	kind  string
	table Table
	on    Condition
}

// From sets the tables of the FROM clause.
func (s *Selector) From(tables ...Table) *Selector {
	s.from = append(s.from, tables...)
	return s
}

// Join adds an INNER JOIN of t; the join condition is set with On.
func (s *Selector) Join(t Table) *Selector {
	s.joins = append(s.joins, join{kind: "JOIN", table: t})
	return s
}

// LeftJoin adds a LEFT JOIN of t.
func (s *Selector) LeftJoin(t Table) *Selector {
	s.joins = append(s.joins, join{kind: "LEFT JOIN", table: t})
	return s
}

// On sets the condition of the last join.
func (s *Selector) On(conds ...Condition) *Selector {
	if len(s.joins) == 0 {
		s.addError(errNoJoin)
		return s
	}
	s.joins[len(s.joins)-1].on = And(conds...)
	return s
}

// Where adds conditions joined with AND.
func (s *Selector) Where(conds ...Condition) *Selector {
	s.add(conds)
	return s
}

// GroupBy sets the GROUP BY fields.
func (s *Selector) GroupBy(fields ...Field) *Selector {
	s.groupBy = append(s.groupBy, fields...)
	return s
}

// OrderBy appends ORDER BY terms: fields or SortFields.
func (s *Selector) OrderBy(terms ...QueryPart) *Selector {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

// Distinct makes the selection SELECT DISTINCT.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// ForUpdate locks the selected rows (ignored by SQLite).
func (s *Selector) ForUpdate() *Selector {
	s.forUpd = true
	return s
}

// AddError records an error returned by Err.
func (s *Selector) AddError(err error) *Selector {
	s.addError(err)
	return s
}

// Fields returns the selected fields. Without explicit fields, all columns
// of the FROM and JOIN tables are selected.
func (s *Selector) Fields() []Field {
	if len(s.fields) > 0 {
		return s.fields
	}
	var fields []Field
	add := func(t Table) {
		for _, c := range t.Fields() {
			fields = append(fields, c)
		}
	}
	for _, t := range s.from {
		add(t)
	}
	for _, j := range s.joins {
		add(j.table)
	}
	return fields
}

// Table returns the first table of the FROM clause, or nil.
func (s *Selector) Table() Table {
	if len(s.from) == 0 {
		return nil
	}
	return s.from[0]
}

// Render implements QueryPart.
func (s *Selector) Render(b *Builder) {
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	fields := s.Fields()
	if len(fields) == 0 {
		b.Byte('*')
	} else {
		b.Declaring(func(b *Builder) {
			for i, f := range fields {
				if i > 0 {
					b.WriteString(", ")
				}
				b.Join(f)
			}
		})
	}
	if len(s.from) > 0 {
		b.WriteString(" FROM ")
		for i, t := range s.from {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Join(t)
		}
	}
	for _, j := range s.joins {
		b.WriteString(" " + j.kind + " ").Join(j.table)
		if j.on != nil {
			b.WriteString(" ON ").Join(j.on)
		}
	}
	s.whereClause.render(b)
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, f := range s.groupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Join(f)
		}
	}
	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ").JoinComma(s.orderBy...)
	}
	if s.limit != nil {
		b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		if s.limit == nil {
			switch b.Dialect() {
			case dialect.SQLite:
				b.WriteString(" LIMIT -1")
			case dialect.MySQL:
				b.WriteString(" LIMIT 18446744073709551615")
			}
		}
		b.WriteString(" OFFSET " + strconv.Itoa(*s.offset))
	}
	if s.forUpd && b.Dialect() != dialect.SQLite {
		b.WriteString(" FOR UPDATE")
	}
}

// Query implements Querier.
func (s *Selector) Query() (string, []any) { return s.query(s) }

// Err implements Querier.
func (s *Selector) Err() error { return s.err(s) }

// String returns the statement with all values inlined.
func (s *Selector) String() string { return s.string(s) }
