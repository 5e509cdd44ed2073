package sql

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/typedsql/dialect"
)

// DataType describes the SQL type of a column or expression. A DataType is
// an immutable value: the With and As methods return modified copies.
type DataType struct {
	name      string
	goType    reflect.Type
	length    int
	precision int
	scale     int
	notNull   bool
	identity  bool
	def       QueryPart
	elem      *DataType // array element type
}

// Predefined data types.
var (
	SmallInt     = newType("smallint", int16(0))
	Integer      = newType("integer", int32(0))
	BigInt       = newType("bigint", int64(0))
	Double       = newType("double precision", float64(0))
	Numeric      = newType("numeric", "")
	Boolean      = newType("boolean", false)
	Varchar      = newType("varchar", "")
	Text         = newType("text", "")
	Date         = newType("date", time.Time{})
	Timestamp    = newType("timestamp", time.Time{})
	TimestampTZ  = newType("timestamptz", time.Time{})
	UUID         = newType("uuid", uuid.UUID{})
	Bytea        = newType("bytea", []byte(nil))
	VarcharArray = DataType{name: "varchar[]", goType: reflect.TypeOf([]string(nil)), elem: &Varchar}
)

func newType(name string, zero any) DataType {
	return DataType{name: name, goType: reflect.TypeOf(zero)}
}

// typeAliases maps the spellings found in information_schema and DDL to
// the canonical names above.
var typeAliases = map[string]DataType{
	"int2":                        SmallInt,
	"smallint":                    SmallInt,
	"int":                         Integer,
	"int4":                        Integer,
	"integer":                     Integer,
	"serial":                      Integer,
	"mediumint":                   Integer,
	"int8":                        BigInt,
	"bigint":                      BigInt,
	"bigserial":                   BigInt,
	"float8":                      Double,
	"double":                      Double,
	"double precision":            Double,
	"real":                        Double,
	"float":                       Double,
	"decimal":                     Numeric,
	"numeric":                     Numeric,
	"bool":                        Boolean,
	"boolean":                     Boolean,
	"tinyint(1)":                  Boolean,
	"varchar":                     Varchar,
	"character varying":           Varchar,
	"char":                        Varchar,
	"character":                   Varchar,
	"text":                        Text,
	"longtext":                    Text,
	"mediumtext":                  Text,
	"date":                        Date,
	"datetime":                    Timestamp,
	"timestamp":                   Timestamp,
	"timestamp without time zone": Timestamp,
	"timestamptz":                 TimestampTZ,
	"timestamp with time zone":    TimestampTZ,
	"uuid":                        UUID,
	"bytea":                       Bytea,
	"blob":                        Bytea,
	"varbinary":                   Bytea,
	"binary":                      Bytea,
	"varchar[]":                   VarcharArray,
	"text[]":                      VarcharArray,
	"_varchar":                    VarcharArray,
	"_text":                       VarcharArray,
}

// DataTypeOf resolves a type name as written in DDL, e.g. "varchar(100)",
// "timestamp(6) with time zone" or "numeric(10,2)".
func DataTypeOf(spec string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(spec))
	var args []int
	if open := strings.IndexByte(name, '('); open >= 0 {
		end := strings.IndexByte(name[open:], ')')
		if end < 0 {
			return DataType{}, fmt.Errorf("dialect/sql: malformed type %q", spec)
		}
		if dt, ok := typeAliases[name[:open+end+1]]; ok {
			return dt, nil
		}
		for _, a := range strings.Split(name[open+1:open+end], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(a))
			if err != nil {
				return DataType{}, fmt.Errorf("dialect/sql: malformed type %q: %w", spec, err)
			}
			args = append(args, n)
		}
		name = strings.TrimSpace(name[:open] + name[open+end+1:])
	}
	dt, ok := typeAliases[name]
	if !ok {
		return DataType{}, fmt.Errorf("dialect/sql: unknown data type %q", spec)
	}
	switch {
	case len(args) == 0:
	case dt.name == Numeric.name:
		dt.precision = args[0]
		if len(args) > 1 {
			dt.scale = args[1]
		}
	case dt.isTime():
		dt.precision = args[0]
	default:
		dt.length = args[0]
	}
	return dt, nil
}

// Name returns the canonical type name, without length or precision.
func (t DataType) Name() string { return t.name }

// GoType returns the Go type values of this type are converted to.
func (t DataType) GoType() reflect.Type { return t.goType }

// Length returns the maximum length of character types, 0 if unbounded.
func (t DataType) Length() int { return t.length }

// Precision returns the precision of numeric and time types.
func (t DataType) Precision() int { return t.precision }

// Scale returns the scale of numeric types.
func (t DataType) Scale() int { return t.scale }

// Nullable reports whether NULL values are allowed.
func (t DataType) Nullable() bool { return !t.notNull }

// Identity reports whether values are assigned by the database.
func (t DataType) Identity() bool { return t.identity }

// Default returns the default value expression, or nil.
func (t DataType) Default() QueryPart { return t.def }

// HasDefault reports whether the type carries a default expression.
func (t DataType) HasDefault() bool { return t.def != nil }

// Elem returns the element type of array types.
func (t DataType) Elem() (DataType, bool) {
	if t.elem == nil {
		return DataType{}, false
	}
	return *t.elem, true
}

// IsArray reports whether t is an array type.
func (t DataType) IsArray() bool { return t.elem != nil }

// WithLength returns a copy of t with the given length.
func (t DataType) WithLength(n int) DataType {
	t.length = n
	return t
}

// WithPrecision returns a copy of t with the given precision and optional scale.
func (t DataType) WithPrecision(p int, scale ...int) DataType {
	t.precision = p
	if len(scale) > 0 {
		t.scale = scale[0]
	}
	return t
}

// NotNull returns a copy of t that rejects NULL values.
func (t DataType) NotNull() DataType {
	t.notNull = true
	return t
}

// Null returns a copy of t that accepts NULL values.
func (t DataType) Null() DataType {
	t.notNull = false
	return t
}

// AsIdentity returns a copy of t marked as database assigned.
func (t DataType) AsIdentity() DataType {
	t.identity = true
	return t
}

// WithDefault returns a copy of t with the given default expression.
func (t DataType) WithDefault(def QueryPart) DataType {
	t.def = def
	return t
}

// Equal reports whether two types describe the same column type,
// including nullability, identity and length.
func (t DataType) Equal(o DataType) bool {
	return t.SameType(o) && t.notNull == o.notNull && t.identity == o.identity
}

// SameType reports whether t and o have the same name, length and precision.
func (t DataType) SameType(o DataType) bool {
	return t.name == o.name && t.length == o.length && t.precision == o.precision && t.scale == o.scale
}

func (t DataType) isTime() bool {
	return t.name == Timestamp.name || t.name == TimestampTZ.name || t.name == Date.name
}

// SQL returns the type as written in DDL and CAST expressions for the
// given dialect, e.g. "varchar(100)" or "timestamp(6) with time zone".
func (t DataType) SQL(d string) string {
	switch d {
	case dialect.MySQL:
		return t.mysqlSQL()
	case dialect.SQLite:
		return t.sqliteSQL()
	}
	switch t.name {
	case Varchar.name:
		if t.length > 0 {
			return fmt.Sprintf("varchar(%d)", t.length)
		}
		return "varchar"
	case Numeric.name:
		if t.precision > 0 {
			return fmt.Sprintf("numeric(%d, %d)", t.precision, t.scale)
		}
		return "numeric"
	case Timestamp.name:
		if t.precision > 0 {
			return fmt.Sprintf("timestamp(%d)", t.precision)
		}
		return "timestamp"
	case TimestampTZ.name:
		if t.precision > 0 {
			return fmt.Sprintf("timestamp(%d) with time zone", t.precision)
		}
		return "timestamp with time zone"
	}
	return t.name
}

func (t DataType) mysqlSQL() string {
	switch t.name {
	case Integer.name:
		return "int"
	case BigInt.name, SmallInt.name:
		return t.name
	case Double.name:
		return "double"
	case Boolean.name:
		return "tinyint(1)"
	case Varchar.name:
		if t.length > 0 {
			return fmt.Sprintf("varchar(%d)", t.length)
		}
		return "varchar(255)"
	case Timestamp.name, TimestampTZ.name:
		if t.precision > 0 {
			return fmt.Sprintf("timestamp(%d)", t.precision)
		}
		return "timestamp"
	case UUID.name:
		return "char(36)"
	case Bytea.name:
		return "blob"
	case Numeric.name:
		if t.precision > 0 {
			return fmt.Sprintf("decimal(%d, %d)", t.precision, t.scale)
		}
		return "decimal"
	}
	return t.name
}

func (t DataType) sqliteSQL() string {
	switch t.name {
	case SmallInt.name, Integer.name, BigInt.name, Boolean.name:
		return "integer"
	case Double.name:
		return "real"
	case Varchar.name, Text.name, UUID.name, Numeric.name:
		return "text"
	case Timestamp.name, TimestampTZ.name:
		return "timestamp"
	case Bytea.name:
		return "blob"
	}
	return t.name
}

// castName returns the target type of a CAST expression.
func (t DataType) castName(d string) string {
	if d == dialect.MySQL {
		switch t.name {
		case SmallInt.name, Integer.name, BigInt.name:
			return "SIGNED"
		case Varchar.name, Text.name, UUID.name:
			return "CHAR"
		case Timestamp.name, TimestampTZ.name:
			return "DATETIME"
		}
	}
	return t.SQL(d)
}

// Convert converts a value read from the driver (or a cache) to the Go type
// of t. NULL stays nil.
func (t DataType) Convert(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t.goType == nil || reflect.TypeOf(v) == t.goType {
		return v, nil
	}
	switch t.goType.Kind() {
	case reflect.String:
		switch v := v.(type) {
		case []byte:
			return string(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case reflect.Bool:
		switch v := v.(type) {
		case int64:
			return v != 0, nil
		case string:
			return strconv.ParseBool(v)
		case []byte:
			return strconv.ParseBool(string(v))
		}
	case reflect.Int16, reflect.Int32, reflect.Int64:
		return convertInt(t.goType, v)
	case reflect.Float64:
		switch v := v.(type) {
		case []byte:
			return strconv.ParseFloat(string(v), 64)
		case string:
			return strconv.ParseFloat(v, 64)
		}
		rv := reflect.ValueOf(v)
		if rv.CanConvert(t.goType) {
			return rv.Convert(t.goType).Interface(), nil
		}
	}
	switch t.goType {
	case reflect.TypeOf(time.Time{}):
		switch v := v.(type) {
		case string:
			return parseTime(v)
		case []byte:
			return parseTime(string(v))
		}
	case reflect.TypeOf(uuid.UUID{}):
		switch v := v.(type) {
		case string:
			return uuid.Parse(v)
		case []byte:
			if len(v) == 16 {
				return uuid.FromBytes(v)
			}
			return uuid.ParseBytes(v)
		}
	case reflect.TypeOf([]byte(nil)):
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	case reflect.TypeOf([]string(nil)):
		switch v := v.(type) {
		case []any:
			out := make([]string, len(v))
			for i, e := range v {
				s, err := Varchar.Convert(e)
				if err != nil {
					return nil, err
				}
				out[i], _ = s.(string)
			}
			return out, nil
		case []byte:
			return parseTextArray(string(v))
		case string:
			return parseTextArray(v)
		}
	}
	return nil, fmt.Errorf("dialect/sql: cannot convert %T to %s (%s)", v, t.goType, t.name)
}

func convertInt(target reflect.Type, v any) (any, error) {
	var n int64
	switch v := v.(type) {
	case []byte:
		p, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, err
		}
		n = p
	case string:
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		n = p
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			n = rv.Int()
		case rv.CanUint():
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("dialect/sql: value %d overflows %s", u, target)
			}
			n = int64(u)
		case rv.CanFloat() && rv.Float() == math.Trunc(rv.Float()):
			n = int64(rv.Float())
		default:
			return nil, fmt.Errorf("dialect/sql: cannot convert %T to %s", v, target)
		}
	}
	out := reflect.New(target).Elem()
	if out.OverflowInt(n) {
		return nil, fmt.Errorf("dialect/sql: value %d overflows %s", n, target)
	}
	out.SetInt(n)
	return out.Interface(), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dialect/sql: cannot parse %q as time", s)
}

// parseTextArray parses the PostgreSQL text representation of a
// one-dimensional array, e.g. {bar,"be que"}.
func parseTextArray(s string) ([]string, error) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("dialect/sql: malformed array literal %q", s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return []string{}, nil
	}
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(out, cur.String()), nil
}
