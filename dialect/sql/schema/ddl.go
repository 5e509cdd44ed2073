package schema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
)

// DDLOption configures the statements returned by CreateStatements.
type DDLOption func(*ddlConfig)

type ddlConfig struct {
	qualifier *string
	indent    string
	ifMissing bool
}

// WithQualifier prefixes tables with the given schema name. An empty
// string disables the prefix. By default, postgres and mysql tables are
// qualified with the schema name, and sqlite tables are not.
func WithQualifier(q string) DDLOption {
	return func(c *ddlConfig) {
		c.qualifier = &q
	}
}

// WithIndent indents the column definitions of CREATE TABLE statements.
func WithIndent(indent string) DDLOption {
	return func(c *ddlConfig) {
		c.indent = indent
	}
}

// IfNotExists adds IF NOT EXISTS to the CREATE TABLE statements. It is
// ignored on SQLite.
func IfNotExists() DDLOption {
	return func(c *ddlConfig) {
		c.ifMissing = true
	}
}

// CreateStatements returns the statements creating s in the given dialect:
// the schema itself (postgres and mysql) followed by its tables in
// declaration order.
func CreateStatements(ctx context.Context, d string, s *sql.Schema, opts ...DDLOption) ([]string, error) {
	cfg := &ddlConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	planner, err := defaultPlan(d)
	if err != nil {
		return nil, err
	}
	as, err := ToAtlas(d, s)
	if err != nil {
		return nil, err
	}
	var changes []schema.Change
	if d != dialect.SQLite && cfg.qualifier == nil {
		changes = append(changes, &schema.AddSchema{S: as, Extra: []schema.Clause{&schema.IfNotExists{}}})
	}
	for _, t := range as.Tables {
		add := &schema.AddTable{T: t}
		if cfg.ifMissing && d != dialect.SQLite {
			add.Extra = append(add.Extra, &schema.IfNotExists{})
		}
		changes = append(changes, add)
	}
	plan, err := planner.PlanChanges(ctx, "create_"+s.Name(), changes, func(o *migrate.PlanOptions) {
		if cfg.qualifier != nil {
			o.SchemaQualifier = cfg.qualifier
		}
		o.Indent = cfg.indent
	})
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: plan %s: %w", s.Name(), err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

// ToAtlas converts s into its atlas representation for the dialect d.
// Column types are rendered with DataType.SQL and parsed back by the atlas
// driver of the dialect.
func ToAtlas(d string, s *sql.Schema) (*schema.Schema, error) {
	parse, err := typeParser(d)
	if err != nil {
		return nil, err
	}
	as := schema.New(s.Name())
	for _, tbl := range s.Tables() {
		t, err := toAtlasTable(d, parse, tbl)
		if err != nil {
			return nil, err
		}
		as.AddTables(t)
	}
	return as, nil
}

func toAtlasTable(d string, parse func(string) (schema.Type, error), tbl sql.Table) (*schema.Table, error) {
	t := schema.NewTable(tbl.Name())
	if c := tbl.Comment(); c != "" {
		t.SetComment(c)
	}
	pk := tbl.PrimaryKey()
	for _, c := range tbl.Fields() {
		dt := c.DataType()
		raw := dt.SQL(d)
		typ, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("dialect/sql/schema: column %s.%s: %w", tbl.Name(), c.Name(), err)
		}
		col := schema.NewColumn(c.Name()).SetType(typ).SetNull(dt.Nullable())
		col.Type.Raw = raw
		if dt.HasDefault() {
			col.SetDefault(&schema.RawExpr{X: sql.InlinedFor(d, dt.Default())})
		}
		if cm := c.Comment(); cm != "" {
			col.SetComment(cm)
		}
		if dt.Identity() {
			if attr := identityAttr(d, pk, c); attr != nil {
				col.AddAttrs(attr)
			}
		}
		t.AddColumns(col)
	}
	if pk != nil {
		cols := make([]*schema.Column, 0, len(pk.FieldNames()))
		for _, name := range pk.FieldNames() {
			col, ok := t.Column(name)
			if !ok {
				return nil, fmt.Errorf("dialect/sql/schema: primary key %s references unknown column %q", pk.Name(), name)
			}
			cols = append(cols, col)
		}
		t.SetPrimaryKey(schema.NewPrimaryKey(cols...).SetName(pk.Name()))
	}
	return t, nil
}

// identityAttr returns the attribute marking c as generated by the
// database. SQLite can only express it on a single-column primary key.
func identityAttr(d string, pk *sql.UniqueKey, c *sql.Column) schema.Attr {
	switch d {
	case dialect.Postgres:
		return &postgres.Identity{Generation: "BY DEFAULT", Sequence: &postgres.Sequence{Start: 1, Increment: 1}}
	case dialect.MySQL:
		return &mysql.AutoIncrement{}
	case dialect.SQLite:
		if pk != nil && len(pk.FieldNames()) == 1 && pk.FieldNames()[0] == c.Name() {
			return &sqlite.AutoIncrement{}
		}
	}
	return nil
}

func defaultPlan(d string) (migrate.PlanApplier, error) {
	switch d {
	case dialect.Postgres:
		return postgres.DefaultPlan, nil
	case dialect.MySQL:
		return mysql.DefaultPlan, nil
	case dialect.SQLite:
		return sqlite.DefaultPlan, nil
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", d)
	}
}

func typeParser(d string) (func(string) (schema.Type, error), error) {
	switch d {
	case dialect.Postgres:
		return postgres.ParseType, nil
	case dialect.MySQL:
		return mysql.ParseType, nil
	case dialect.SQLite:
		return sqlite.ParseType, nil
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", d)
	}
}

func typeFormatter(d string) (func(schema.Type) (string, error), error) {
	switch d {
	case dialect.Postgres:
		return postgres.FormatType, nil
	case dialect.MySQL:
		return mysql.FormatType, nil
	case dialect.SQLite:
		return sqlite.FormatType, nil
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", d)
	}
}
