package schema

import (
	"context"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
)

// ValidationError is one difference found by Validate, or one problem
// found by Check. Breaking differences make queries built from the
// descriptors fail on the database.
type ValidationError struct {
	Table    string
	Column   string
	Message  string
	Breaking bool
}

func (e *ValidationError) Error() string {
	name := e.Table
	if e.Column != "" {
		name += "." + e.Column
	}
	return name + ": " + e.Message
}

// ValidationResult lists the errors and warnings of a validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

func (r *ValidationResult) HasErrors() bool   { return len(r.Errors) > 0 }
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasBreakingChanges reports whether an error or a warning is breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, list := range [][]*ValidationError{r.Errors, r.Warnings} {
		for _, e := range list {
			if e.Breaking {
				return true
			}
		}
	}
	return false
}

// Err returns nil when r has no errors, or a single error listing them.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	var sb strings.Builder
	for i, e := range r.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return fmt.Errorf("dialect/sql/schema: %d validation error(s): %s", len(r.Errors), sb.String())
}

// String formats r as an indented list of errors then warnings, or
// "No issues found".
func (r *ValidationResult) String() string {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return "No issues found"
	}
	var sb strings.Builder
	for _, section := range []struct {
		title string
		list  []*ValidationError
	}{
		{"Errors", r.Errors},
		{"Warnings", r.Warnings},
	} {
		if len(section.list) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", section.title)
		for _, e := range section.list {
			fmt.Fprintf(&sb, "  - %s", e)
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// report adds the issues of one table to a result.
type report struct {
	*ValidationResult
	table string
}

func (r report) fail(column, msg string, breaking bool) {
	r.Errors = append(r.Errors, &ValidationError{Table: r.table, Column: column, Message: msg, Breaking: breaking})
}

func (r report) warn(column, msg string) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: r.table, Column: column, Message: msg})
}

// breaking adds a breaking error, or a breaking warning when allowed.
func (r report) breaking(column, msg string, allowed bool) {
	e := &ValidationError{Table: r.table, Column: column, Message: msg, Breaking: true}
	if allowed {
		r.Warnings = append(r.Warnings, e)
		return
	}
	r.Errors = append(r.Errors, e)
}

// ValidateOption configures Validate and ValidateDB.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	dialect        string
	schema         string
	schemaSet      bool
	missingColumns bool
	nullability    bool
}

// ForDialect compares column types as rendered for the dialect d.
// Defaults to postgres.
func ForDialect(d string) ValidateOption {
	return func(c *validateConfig) { c.dialect = d }
}

// InSchema makes ValidateDB inspect the named database schema instead of
// the one named by the expected descriptor.
func InSchema(name string) ValidateOption {
	return func(c *validateConfig) { c.schema, c.schemaSet = name, true }
}

// AllowMissingColumn reports columns missing from the database as warnings.
func AllowMissingColumn() ValidateOption {
	return func(c *validateConfig) { c.missingColumns = true }
}

// AllowNullabilityMismatch reports nullability mismatches as warnings.
func AllowNullabilityMismatch() ValidateOption {
	return func(c *validateConfig) { c.nullability = true }
}

func configure(opts []ValidateOption) validateConfig {
	cfg := validateConfig{dialect: dialect.Postgres}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate compares the expected descriptors with the actual ones, usually
// read by Inspect. Missing tables and columns, type and nullability
// mismatches are breaking errors. Columns present only in the database are
// warnings, tables present only in the database are ignored.
//
// Example:
//
//	actual, err := schema.Inspect(ctx, db, dialect.Postgres, "test")
//	if err != nil {
//	    return err
//	}
//	result := schema.Validate(testdb.Test.Schema, actual)
//	if result.HasBreakingChanges() {
//	    log.Fatal("descriptors are out of date:", result)
//	}
func Validate(expected, actual *sql.Schema, opts ...ValidateOption) *ValidationResult {
	cfg := configure(opts)
	result := &ValidationResult{}
	for _, want := range expected.Tables() {
		r := report{result, want.QualifiedName()}
		if got := actual.Table(want.Name()); got != nil {
			compareTables(r, cfg, want, got)
		} else {
			r.fail("", "table does not exist", true)
		}
	}
	return result
}

func compareTables(r report, cfg validateConfig, want, got sql.Table) {
	for _, wc := range want.Fields() {
		name := wc.Name()
		gc := got.Field(name)
		if gc == nil {
			r.breaking(name, "column does not exist", cfg.missingColumns)
			continue
		}
		wt, gt := wc.DataType(), gc.DataType()
		if ws, gs := wt.SQL(cfg.dialect), gt.SQL(cfg.dialect); ws != gs {
			r.fail(name, fmt.Sprintf("column type is %s, expected %s", gs, ws), true)
		}
		if wt.Nullable() != gt.Nullable() {
			r.breaking(name, fmt.Sprintf("column nullability is %s, expected %s", nullability(gt), nullability(wt)), cfg.nullability)
		}
		if wt.Identity() != gt.Identity() {
			r.warn(name, fmt.Sprintf("column identity is %t, expected %t", gt.Identity(), wt.Identity()))
		}
		if wt.HasDefault() != gt.HasDefault() {
			r.warn(name, fmt.Sprintf("column default is %s, expected %s", defaultOf(cfg.dialect, gt), defaultOf(cfg.dialect, wt)))
		}
	}
	for _, gc := range got.Fields() {
		if want.Field(gc.Name()) == nil {
			r.warn(gc.Name(), "column is not described")
		}
	}
	wk, gk := want.PrimaryKey(), got.PrimaryKey()
	if wk == nil {
		return
	}
	if gk == nil {
		r.fail("", fmt.Sprintf("primary key %s does not exist", wk.Name()), true)
		return
	}
	if wc, gc := strings.Join(wk.FieldNames(), ", "), strings.Join(gk.FieldNames(), ", "); wc != gc {
		r.fail("", fmt.Sprintf("primary key columns are (%s), expected (%s)", gc, wc), true)
	}
}

func nullability(dt sql.DataType) string {
	if dt.Nullable() {
		return "NULL"
	}
	return "NOT NULL"
}

func defaultOf(d string, dt sql.DataType) string {
	if !dt.HasDefault() {
		return "none"
	}
	return sql.InlinedFor(d, dt.Default())
}

// ValidateDB inspects the database behind db and validates expected
// against it. SQLite databases are inspected on their main schema unless
// InSchema is given.
func ValidateDB(ctx context.Context, db schema.ExecQuerier, expected *sql.Schema, opts ...ValidateOption) (*ValidationResult, error) {
	cfg := configure(opts)
	name := expected.Name()
	switch {
	case cfg.schemaSet:
		name = cfg.schema
	case cfg.dialect == dialect.SQLite:
		name = ""
	}
	actual, err := Inspect(ctx, db, cfg.dialect, name)
	if err != nil {
		return nil, err
	}
	return Validate(expected, actual, opts...), nil
}

// Check validates a single schema definition: duplicate table or column
// names and primary keys without known columns are errors, tables without
// a primary key are warnings.
func Check(s *sql.Schema) *ValidationResult {
	result := &ValidationResult{}
	tables := make(map[string]struct{})
	for _, t := range s.Tables() {
		r := report{result, t.QualifiedName()}
		if _, dup := tables[t.Name()]; dup {
			r.fail("", "duplicate table name", false)
		}
		tables[t.Name()] = struct{}{}
		columns := make(map[string]struct{})
		for _, c := range t.Fields() {
			if _, dup := columns[c.Name()]; dup {
				r.fail(c.Name(), "duplicate column name", false)
			}
			columns[c.Name()] = struct{}{}
		}
		switch pk := t.PrimaryKey(); {
		case pk == nil:
			r.warn("", "table has no primary key")
		case len(pk.FieldNames()) == 0:
			r.fail("", fmt.Sprintf("primary key %s has no known columns", pk.Name()), false)
		}
	}
	return result
}
