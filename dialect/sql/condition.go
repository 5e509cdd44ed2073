package sql

// Condition is a boolean SQL expression used in WHERE and ON clauses.
type Condition interface {
	QueryPart
	condition()
}

type comparison struct {
	left  QueryPart
	op    string
	right any
}

func compare(left QueryPart, op string, right any) Condition {
	return comparison{left: left, op: op, right: right}
}

func (comparison) condition() {}

func (c comparison) Render(b *Builder) {
	b.Join(c.left)
	b.WriteString(" " + c.op + " ")
	b.Arg(c.right)
}

type nullCheck struct {
	left QueryPart
	not  bool
}

func (nullCheck) condition() {}

func (c nullCheck) Render(b *Builder) {
	b.Join(c.left)
	if c.not {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

type inList struct {
	left   QueryPart
	values []any
	not    bool
	inline bool
}

func (inList) condition() {}

func (c inList) Render(b *Builder) {
	if len(c.values) == 0 {
		// IN () is a syntax error; an empty list matches nothing.
		if c.not {
			b.WriteString("1 = 1")
		} else {
			b.WriteString("1 = 0")
		}
		return
	}
	b.Join(c.left)
	if c.not {
		b.WriteString(" NOT")
	}
	b.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			b.WriteString(", ")
		}
		if c.inline {
			b.Inline(v)
		} else {
			b.Arg(v)
		}
	}
	b.Byte(')')
}

type junction struct {
	op    string
	conds []Condition
}

func (junction) condition() {}

func (j junction) Render(b *Builder) {
	if len(j.conds) == 1 {
		b.Join(j.conds[0])
		return
	}
	b.Byte('(')
	for i, c := range j.conds {
		if i > 0 {
			b.WriteString(" " + j.op + " ")
		}
		b.Join(c)
	}
	b.Byte(')')
}

type not struct{ cond Condition }

func (not) condition() {}

func (n not) Render(b *Builder) {
	b.WriteString("NOT (")
	b.Join(n.cond)
	b.Byte(')')
}

// And returns the conjunction of the given conditions. Nil conditions
// are skipped, and And of no conditions is nil.
func And(conds ...Condition) Condition {
	return junctionOf("AND", conds)
}

// Or returns the disjunction of the given conditions.
func Or(conds ...Condition) Condition {
	return junctionOf("OR", conds)
}

// Not negates c.
func Not(c Condition) Condition {
	return not{cond: c}
}

func junctionOf(op string, conds []Condition) Condition {
	nonNil := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			nonNil = append(nonNil, c)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}
	return junction{op: op, conds: nonNil}
}

// EqOrIsNull returns "f = v", or "f IS NULL" when v is nil.
func EqOrIsNull(f Field, v any) Condition {
	if isNil(v) {
		return nullCheck{left: f}
	}
	return compare(f, "=", v)
}

// Compare returns the condition "f <op> v" for untyped fields.
// The operator is written as is.
func Compare(f Field, op string, v any) Condition {
	return compare(f, op, v)
}
