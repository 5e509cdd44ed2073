package sql

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/typedsql/dialect"
)

// ParamType controls how bind values are rendered.
type ParamType int

const (
	// ParamIndexed renders bind values as placeholders ($1 or ?).
	ParamIndexed ParamType = iota
	// ParamInlined renders bind values as SQL literals.
	ParamInlined
)

// QueryPart is implemented by everything that can render itself into SQL:
// tables, fields, conditions and whole queries.
type QueryPart interface {
	Render(b *Builder)
}

// Builder is the low-level SQL string builder. It quotes identifiers,
// emits placeholders or literals and collects the bind arguments.
type Builder struct {
	sb      strings.Builder
	dialect string
	params  ParamType
	args    []any
	errs    []error
	// unqualified renders columns without their table qualifier,
	// as required in INSERT column lists and UPDATE SET clauses.
	unqualified bool
	// declaring renders field aliases as "expr AS alias" (SELECT lists).
	declaring bool
	// tables lists the qualified names of the rendered tables.
	tables []string
}

// NewBuilder returns a Builder for the given dialect.
func NewBuilder(dialect string, params ParamType) *Builder {
	return &Builder{dialect: normalizeDialect(dialect), params: params}
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() string { return b.dialect }

// Params returns the parameter rendering mode.
func (b *Builder) Params() ParamType { return b.params }

// WriteString appends s to the query.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Byte appends c to the query.
func (b *Builder) Byte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident appends a quoted identifier.
func (b *Builder) Ident(name string) *Builder {
	b.sb.WriteString(b.Quote(name))
	return b
}

// Quote quotes an identifier for the builder dialect.
func (b *Builder) Quote(name string) string {
	if b.dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Arg appends a bind value, either as a placeholder or inlined.
func (b *Builder) Arg(v any) *Builder {
	if b.params == ParamInlined {
		return b.Inline(v)
	}
	if part, ok := v.(QueryPart); ok {
		part.Render(b)
		return b
	}
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Inline appends v as a SQL literal regardless of the parameter mode.
func (b *Builder) Inline(v any) *Builder {
	if part, ok := v.(QueryPart); ok {
		part.Render(b)
		return b
	}
	lit, err := literal(b.dialect, v)
	if err != nil {
		b.AddError(err)
		return b
	}
	b.sb.WriteString(lit)
	return b
}

// Join renders the given part into the builder.
func (b *Builder) Join(part QueryPart) *Builder {
	if part != nil {
		part.Render(b)
	}
	return b
}

// JoinComma renders the parts separated by commas.
func (b *Builder) JoinComma(parts ...QueryPart) *Builder {
	for i, p := range parts {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Join(p)
	}
	return b
}

// Unqualified renders fn with column qualifiers disabled.
func (b *Builder) Unqualified(fn func(*Builder)) *Builder {
	prev := b.unqualified
	b.unqualified = true
	fn(b)
	b.unqualified = prev
	return b
}

// Declaring renders fn in a field declaration context (SELECT lists),
// where aliased fields render their definition.
func (b *Builder) Declaring(fn func(*Builder)) *Builder {
	prev := b.declaring
	b.declaring = true
	fn(b)
	b.declaring = prev
	return b
}

// AddError records a rendering error.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the errors collected while rendering.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// String returns the rendered SQL.
func (b *Builder) String() string { return b.sb.String() }

// Args returns the collected bind arguments.
func (b *Builder) Args() []any { return b.args }

// Tables returns the qualified names of the tables rendered so far,
// subqueries included, without duplicates. Aliases are resolved to the
// table they alias.
func (b *Builder) Tables() []string { return b.tables }

func (b *Builder) addTable(t Table) {
	if a := t.Aliased(); a != nil {
		t = a
	}
	name := t.QualifiedName()
	if !slices.Contains(b.tables, name) {
		b.tables = append(b.tables, name)
	}
}

// TablesOf returns the tables part reads or writes.
func TablesOf(part QueryPart) []string {
	b := NewBuilder(dialect.Postgres, ParamIndexed)
	b.Join(part)
	return b.Tables()
}

// Query returns the rendered SQL and its arguments.
func (b *Builder) Query() (string, []any) { return b.String(), b.Args() }

// Inlined renders part with all bind values inlined using the PostgreSQL
// dialect. It is the human readable form used in logs and tests.
func Inlined(part QueryPart) string {
	return InlinedFor(dialect.Postgres, part)
}

// InlinedFor is like Inlined, but for the given dialect.
func InlinedFor(d string, part QueryPart) string {
	b := NewBuilder(d, ParamInlined)
	b.Join(part)
	return b.String()
}

// Render renders part with placeholders for the given dialect.
func Render(d string, part QueryPart) (string, []any, error) {
	b := NewBuilder(d, ParamIndexed)
	b.Join(part)
	return b.String(), b.Args(), b.Err()
}

// quoteLiteral quotes s as a string literal.
func quoteLiteral(d, s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	if d == dialect.MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + s + "'"
}

// literal formats v as a SQL literal for the given dialect.
func literal(d string, v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteLiteral(d, v), nil
	case bool:
		if d == dialect.SQLite {
			if v {
				return "1", nil
			}
			return "0", nil
		}
		return strings.ToUpper(strconv.FormatBool(v)), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return quoteLiteral(d, v.Format("2006-01-02 15:04:05.999999999-07:00")), nil
	case uuid.UUID:
		return quoteLiteral(d, v.String()), nil
	case []byte:
		switch d {
		case dialect.Postgres:
			return `'\x` + hex.EncodeToString(v) + `'`, nil
		default:
			return "X'" + hex.EncodeToString(v) + "'", nil
		}
	case []string:
		if d != dialect.Postgres {
			return "", fmt.Errorf("dialect/sql: array literals are not supported by %s", d)
		}
		elems := make([]string, len(v))
		for i, s := range v {
			elems[i] = quoteLiteral(d, s)
		}
		return "ARRAY[" + strings.Join(elems, ", ") + "]", nil
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return "", err
		}
		return literal(d, dv)
	case fmt.Stringer:
		return quoteLiteral(d, v.String()), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL", nil
		}
		return literal(d, rv.Elem().Interface())
	}
	return "", fmt.Errorf("dialect/sql: cannot inline value of type %T", v)
}
