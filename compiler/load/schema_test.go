package load

import (
	"context"
	stdsql "database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/schema"
	"github.com/syssam/typedsql/internal/testdb"
)

func TestLoadFile(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "test.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "test", s.Name)
	assert.Equal(t, "testdb", s.Package)
	require.Len(t, s.Tables, 2)
	assert.Equal(t, &PrimaryKey{Name: "pk_author", Columns: []string{"id"}}, s.Tables[0].PrimaryKey)
	assert.Equal(t, "now()", s.Tables[0].Columns[3].Default)

	built, err := s.Build()
	require.NoError(t, err)
	// The definition describes the same tables as the generated package.
	result := schema.Validate(testdb.Test.Schema, built)
	assert.False(t, result.HasErrors(), result.String())
	assert.False(t, result.HasWarnings(), result.String())

	author := built.Table("author")
	require.NotNil(t, author)
	assert.Equal(t, "test.author", author.QualifiedName())
	created := author.Field("created").DataType()
	assert.Equal(t, "timestamp(6) with time zone", created.SQL(dialect.Postgres))
	assert.Equal(t, "now()", sql.Inlined(created.Default()))
	assert.True(t, author.Field("id").DataType().Identity())
	assert.Equal(t, []string{"id"}, author.PrimaryKey().FieldNames())
	assert.True(t, built.Table("book").Field("title").DataType().Nullable())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema definition")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty schema definition"},
		{"unknown key", "schema: s\nowner: me\n", "field owner not found"},
		{"missing schema", "tables: []\n", "missing schema name"},
		{"missing table name", "schema: s\ntables:\n  - columns: []\n", "table 0: missing name"},
		{"duplicate table", "schema: s\ntables:\n  - name: a\n  - name: a\n", `duplicate table "a"`},
		{"missing column type", "schema: s\ntables:\n  - name: a\n    columns:\n      - name: id\n", `column "id": missing type`},
		{"unknown type", "schema: s\ntables:\n  - name: a\n    columns:\n      - name: id\n        type: money\n", `unknown data type "money"`},
		{"duplicate column", "schema: s\ntables:\n  - name: a\n    columns:\n      - {name: id, type: integer}\n      - {name: id, type: text}\n", `duplicate column "id"`},
		{"unknown key column", "schema: s\ntables:\n  - name: a\n    primary_key: {name: pk_a, columns: [uid]}\n    columns:\n      - {name: id, type: integer}\n", `references unknown column "uid"`},
		{"empty key", "schema: s\ntables:\n  - name: a\n    primary_key: {name: pk_a}\n    columns:\n      - {name: id, type: integer}\n", "has no columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildDefaults(t *testing.T) {
	s, err := Parse([]byte(`
schema: shop
tables:
  - name: item
    comment: Items for sale.
    primary_key:
      columns: [id]
    columns:
      - {name: id, type: bigint, not_null: true, identity: true}
      - {name: status, type: varchar(20), default: "'new'", comment: Lifecycle state.}
`))
	require.NoError(t, err)
	built, err := s.Build()
	require.NoError(t, err)
	item := built.Table("item")
	require.NotNil(t, item)
	assert.Equal(t, "Items for sale.", item.Comment())
	assert.Equal(t, "pk_item", item.PrimaryKey().Name())
	status := item.Field("status")
	assert.Equal(t, "Lifecycle state.", status.Comment())
	assert.Equal(t, "'new'", sql.Inlined(status.DataType().Default()))
}

func TestFromSQLRoundTrip(t *testing.T) {
	def := FromSQL(testdb.Test.Schema)
	data, err := def.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "schema: test\n")
	assert.Contains(t, string(data), "type: timestamp(6) with time zone")
	assert.Contains(t, string(data), "columns: [id]")

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, def, parsed)

	built, err := parsed.Build()
	require.NoError(t, err)
	result := schema.Validate(testdb.Test.Schema, built)
	assert.False(t, result.HasErrors(), result.String())
	assert.False(t, result.HasWarnings(), result.String())
}

func TestFromDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := stdsql.Open("sqlite", filepath.Join(t.TempDir(), "load.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	stmts, err := schema.CreateStatements(ctx, dialect.SQLite, testdb.Test.Schema)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	s, err := FromDatabase(ctx, db, dialect.SQLite, "")
	require.NoError(t, err)
	assert.Equal(t, "main", s.Name())
	require.Len(t, s.Tables(), 2)
	book := s.Table("book")
	require.NotNil(t, book)
	assert.Equal(t, []string{"id"}, book.PrimaryKey().FieldNames())
	assert.False(t, book.Field("id").DataType().Nullable())

	_, err = FromDatabase(ctx, db, "oracle", "")
	require.Error(t, err)
}
