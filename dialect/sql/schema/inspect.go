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

// Open returns the atlas driver of the dialect d over db.
func Open(d string, db schema.ExecQuerier) (migrate.Driver, error) {
	switch d {
	case dialect.Postgres:
		return postgres.Open(db)
	case dialect.MySQL:
		return mysql.Open(db)
	case dialect.SQLite:
		return sqlite.Open(db)
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", d)
	}
}

// Inspect reads the tables of the named schema from a live database and
// returns them as runtime metadata. An empty name inspects the schema of
// the connection ("main" on SQLite).
func Inspect(ctx context.Context, db schema.ExecQuerier, d, name string) (*sql.Schema, error) {
	drv, err := Open(d, db)
	if err != nil {
		return nil, err
	}
	s, err := drv.InspectSchema(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: inspect schema %q: %w", name, err)
	}
	return FromAtlas(d, s)
}

// FromAtlas converts an inspected atlas schema into runtime metadata.
func FromAtlas(d string, s *schema.Schema) (*sql.Schema, error) {
	format, err := typeFormatter(d)
	if err != nil {
		return nil, err
	}
	tables := make([]sql.Table, 0, len(s.Tables))
	for _, at := range s.Tables {
		t := sql.NewTable(s.Name, at.Name)
		for _, ac := range at.Columns {
			dt, err := columnType(format, ac)
			if err != nil {
				return nil, fmt.Errorf("dialect/sql/schema: column %s.%s: %w", at.Name, ac.Name, err)
			}
			c := t.AddColumn(ac.Name, dt)
			var cm schema.Comment
			if hasAttr(ac.Attrs, &cm) {
				c.SetComment(cm.Text)
			}
		}
		if pk := at.PrimaryKey; pk != nil {
			names := make([]string, 0, len(pk.Parts))
			for _, p := range pk.Parts {
				if p.C != nil {
					names = append(names, p.C.Name)
				}
			}
			t.SetPrimaryKey(pk.Name, names...)
		}
		var cm schema.Comment
		if hasAttr(at.Attrs, &cm) {
			t.SetComment(cm.Text)
		}
		tables = append(tables, t)
	}
	return sql.NewSchema(s.Name, tables...), nil
}

func columnType(format func(schema.Type) (string, error), c *schema.Column) (sql.DataType, error) {
	spec := c.Type.Raw
	if f, err := format(c.Type.Type); err == nil && f != "" {
		spec = f
	}
	dt, err := sql.DataTypeOf(spec)
	if err != nil && c.Type.Raw != "" && c.Type.Raw != spec {
		dt, err = sql.DataTypeOf(c.Type.Raw)
	}
	if err != nil {
		return sql.DataType{}, err
	}
	if !c.Type.Null {
		dt = dt.NotNull()
	}
	if isIdentity(c.Attrs) {
		dt = dt.AsIdentity()
	}
	switch x := c.Default.(type) {
	case *schema.RawExpr:
		dt = dt.WithDefault(sql.DefaultOf(x.X))
	case *schema.Literal:
		dt = dt.WithDefault(sql.DefaultOf(x.V))
	}
	return dt, nil
}

func isIdentity(attrs []schema.Attr) bool {
	for _, a := range attrs {
		switch a.(type) {
		case *postgres.Identity, *mysql.AutoIncrement, *sqlite.AutoIncrement:
			return true
		}
	}
	return false
}

func hasAttr(attrs []schema.Attr, c *schema.Comment) bool {
	for _, a := range attrs {
		if x, ok := a.(*schema.Comment); ok {
			*c = *x
			return true
		}
	}
	return false
}
