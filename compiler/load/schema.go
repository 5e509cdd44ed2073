// Package load reads schema definitions, from YAML files or from a live
// database, into runtime metadata the generator works on.
package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	atlas "ariga.io/atlas/sql/schema"
	"gopkg.in/yaml.v3"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/schema"
)

// Schema is a schema definition as written in a YAML file.
type Schema struct {
	Name string `yaml:"schema" json:"schema"`
	// Package is the default name of the generated package.
	Package string   `yaml:"package,omitempty" json:"package,omitempty"`
	Tables  []*Table `yaml:"tables" json:"tables,omitempty"`
}

// Table is a table definition.
type Table struct {
	Name       string      `yaml:"name" json:"name"`
	Comment    string      `yaml:"comment,omitempty" json:"comment,omitempty"`
	PrimaryKey *PrimaryKey `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Columns    []*Column   `yaml:"columns" json:"columns,omitempty"`
}

// PrimaryKey is a named primary key over one or more columns.
type PrimaryKey struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns,flow" json:"columns"`
}

// Column is a column definition. Type is written as in DDL, e.g.
// "varchar(100)" or "timestamp(6) with time zone".
type Column struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	NotNull  bool   `yaml:"not_null,omitempty" json:"not_null,omitempty"`
	Identity bool   `yaml:"identity,omitempty" json:"identity,omitempty"`
	Default  string `yaml:"default,omitempty" json:"default,omitempty"`
	Comment  string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Parse decodes and checks a YAML definition. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	s := &Schema{}
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty schema definition")
		}
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads the YAML definition at path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema definition: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Schema) check() error {
	if s.Name == "" {
		return errors.New("missing schema name")
	}
	tables := make(map[string]bool, len(s.Tables))
	for i, t := range s.Tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("schema %q: table %d: missing name", s.Name, i)
		}
		if tables[t.Name] {
			return fmt.Errorf("schema %q: duplicate table %q", s.Name, t.Name)
		}
		tables[t.Name] = true
		columns := make(map[string]bool, len(t.Columns))
		for j, c := range t.Columns {
			if c == nil || c.Name == "" {
				return fmt.Errorf("table %q: column %d: missing name", t.Name, j)
			}
			if columns[c.Name] {
				return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			}
			columns[c.Name] = true
			if c.Type == "" {
				return fmt.Errorf("table %q: column %q: missing type", t.Name, c.Name)
			}
			if _, err := sql.DataTypeOf(c.Type); err != nil {
				return fmt.Errorf("table %q: column %q: %w", t.Name, c.Name, err)
			}
		}
		if pk := t.PrimaryKey; pk != nil {
			if len(pk.Columns) == 0 {
				return fmt.Errorf("table %q: primary key %q has no columns", t.Name, pk.Name)
			}
			for _, name := range pk.Columns {
				if !columns[name] {
					return fmt.Errorf("table %q: primary key %q references unknown column %q", t.Name, pk.Name, name)
				}
			}
		}
	}
	return nil
}

// Build returns the runtime metadata of the definition.
func (s *Schema) Build() (*sql.Schema, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	tables := make([]sql.Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		var opts []sql.TableOption
		if pk := t.PrimaryKey; pk != nil {
			name := pk.Name
			if name == "" {
				name = "pk_" + t.Name
			}
			opts = append(opts, sql.TablePrimaryKey(name, pk.Columns...))
		}
		if t.Comment != "" {
			opts = append(opts, sql.TableComment(t.Comment))
		}
		tbl := sql.NewTable(s.Name, t.Name, opts...)
		for _, c := range t.Columns {
			dt, err := c.dataType()
			if err != nil {
				return nil, fmt.Errorf("table %q: column %q: %w", t.Name, c.Name, err)
			}
			tbl.AddColumn(c.Name, dt).SetComment(c.Comment)
		}
		tables = append(tables, tbl)
	}
	return sql.NewSchema(s.Name, tables...), nil
}

func (c *Column) dataType() (sql.DataType, error) {
	dt, err := sql.DataTypeOf(c.Type)
	if err != nil {
		return dt, err
	}
	if c.NotNull {
		dt = dt.NotNull()
	}
	if c.Identity {
		dt = dt.AsIdentity()
	}
	if c.Default != "" {
		dt = dt.WithDefault(sql.DefaultOf(c.Default))
	}
	return dt, nil
}

// Marshal encodes the definition as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode schema definition: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromSQL returns the definition of runtime metadata, with column types
// written as in postgres DDL.
func FromSQL(s *sql.Schema) *Schema {
	out := &Schema{Name: s.Name()}
	for _, t := range s.Tables() {
		lt := &Table{Name: t.Name(), Comment: t.Comment()}
		for _, c := range t.Fields() {
			dt := c.DataType()
			lc := &Column{
				Name:     c.Name(),
				Type:     dt.SQL(dialect.Postgres),
				NotNull:  !dt.Nullable(),
				Identity: dt.Identity(),
				Comment:  c.Comment(),
			}
			if dt.HasDefault() {
				lc.Default = sql.Inlined(dt.Default())
			}
			lt.Columns = append(lt.Columns, lc)
		}
		if pk := t.PrimaryKey(); pk != nil {
			lt.PrimaryKey = &PrimaryKey{Name: pk.Name(), Columns: pk.FieldNames()}
		}
		out.Tables = append(out.Tables, lt)
	}
	return out
}

// FromDatabase inspects the named schema of a live database. An empty name
// inspects the schema of the connection.
func FromDatabase(ctx context.Context, db atlas.ExecQuerier, d, name string) (*sql.Schema, error) {
	s, err := schema.Inspect(ctx, db, d, name)
	if err != nil {
		return nil, err
	}
	if res := schema.Check(s); res.HasErrors() {
		return nil, res.Err()
	}
	return s, nil
}
