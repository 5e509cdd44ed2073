package sql

import (
	"fmt"
	"strings"
	"time"

	"github.com/syssam/typedsql/dialect"
)

// PlusDays returns f shifted n days into the future.
func PlusDays(f Expression[time.Time], n int) TypedField[time.Time] {
	return shift(f, n, "DAY")
}

// MinusDays returns f shifted n days into the past.
func MinusDays(f Expression[time.Time], n int) TypedField[time.Time] {
	return shift(f, -n, "DAY")
}

// PlusMonths returns f shifted n months into the future.
func PlusMonths(f Expression[time.Time], n int) TypedField[time.Time] {
	return shift(f, n, "MONTH")
}

// MinusMonths returns f shifted n months into the past.
func MinusMonths(f Expression[time.Time], n int) TypedField[time.Time] {
	return shift(f, -n, "MONTH")
}

func shift(f Expression[time.Time], n int, unit string) TypedField[time.Time] {
	return newExpr[time.Time](f.Name(), f.DataType(), func(b *Builder) {
		abs, op := n, "+"
		if n < 0 {
			abs, op = -n, "-"
		}
		switch b.Dialect() {
		case dialect.MySQL:
			fn := "DATE_ADD"
			if op == "-" {
				fn = "DATE_SUB"
			}
			b.WriteString(fn + "(").Join(f)
			fmt.Fprintf(&b.sb, ", INTERVAL %d %s)", abs, unit)
		case dialect.SQLite:
			b.WriteString("datetime(").Join(f)
			fmt.Fprintf(&b.sb, ", '%s%d %ss')", op, abs, lower(unit))
		default:
			b.Byte('(').Join(f)
			fmt.Fprintf(&b.sb, " %s INTERVAL '%d %ss')", op, abs, lower(unit))
		}
	})
}

func lower(unit string) string {
	if unit == "DAY" {
		return "day"
	}
	return "month"
}

// RegexpMatches returns the PostgreSQL regexp_matches function applied to
// f. The regular expression is inlined and the flags are bound.
func RegexpMatches(f Expression[string], regex, flags string) TypedField[[]string] {
	return newExpr[[]string]("regexp_matches", VarcharArray, func(b *Builder) {
		if b.Dialect() != dialect.Postgres {
			b.AddError(fmt.Errorf("dialect/sql: regexp_matches is not supported by %s", b.Dialect()))
		}
		b.WriteString("regexp_matches(").Join(f).WriteString(", ")
		b.Inline(regex).WriteString(", ").Arg(flags).Byte(')')
	})
}

// ToTimestamp converts seconds since the Unix epoch to a timestamp.
func ToTimestamp(epoch int64) TypedField[time.Time] {
	return newExpr[time.Time]("to_timestamp", TimestampTZ, func(b *Builder) {
		switch b.Dialect() {
		case dialect.MySQL:
			b.WriteString("FROM_UNIXTIME(").Arg(epoch).Byte(')')
		case dialect.SQLite:
			b.WriteString("datetime(").Arg(epoch).WriteString(", 'unixepoch')")
		default:
			b.WriteString("TO_TIMESTAMP(").Arg(epoch).Byte(')')
		}
	})
}

// CastAs returns f converted to dt.
func CastAs[T any](f Field, dt DataType) TypedField[T] {
	return newExpr[T](f.Name(), dt, func(b *Builder) {
		b.WriteString("CAST(").Join(f).WriteString(" AS " + dt.castName(b.Dialect()) + ")")
	})
}

// Now returns the current transaction timestamp.
func Now() TypedField[time.Time] {
	return newExpr[time.Time]("now", TimestampTZ, func(b *Builder) {
		if b.Dialect() == dialect.Postgres {
			b.WriteString("now()")
		} else {
			b.WriteString("CURRENT_TIMESTAMP")
		}
	})
}

// Count returns COUNT(*).
func Count() TypedField[int64] {
	return newExpr[int64]("count", BigInt, func(b *Builder) {
		b.WriteString("COUNT(*)")
	})
}

// Max returns the maximum value of f.
func Max[T any](f Expression[T]) TypedField[T] {
	return aggregate[T]("MAX", f)
}

// Min returns the minimum value of f.
func Min[T any](f Expression[T]) TypedField[T] {
	return aggregate[T]("MIN", f)
}

func aggregate[T any](fn string, f Field) TypedField[T] {
	return newExpr[T](f.Name(), f.DataType().Null(), func(b *Builder) {
		b.WriteString(fn + "(").Join(f).Byte(')')
	})
}

// Raw returns an SQL fragment written as is. It is used for column
// defaults read from definition files or database catalogs.
func Raw(sql string) QueryPart {
	return rawSQL(sql)
}

// DefaultOf returns the column default written as expr in DDL or in a
// catalog. The spellings of the current timestamp map to Now, anything else
// is kept as a raw fragment.
func DefaultOf(expr string) QueryPart {
	e := strings.ToLower(strings.TrimSpace(expr))
	switch {
	case e == "now()", e == "current_timestamp", strings.HasPrefix(e, "current_timestamp("):
		return Now()
	default:
		return Raw(strings.TrimSpace(expr))
	}
}

type rawSQL string

func (r rawSQL) Render(b *Builder) { b.WriteString(string(r)) }

// String returns the fragment.
func (r rawSQL) String() string { return string(r) }
