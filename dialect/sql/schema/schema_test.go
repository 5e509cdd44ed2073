package schema

import (
	"context"
	stdsql "database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/internal/testdb"
)

func openSQLite(t *testing.T) *stdsql.DB {
	t.Helper()
	db, err := stdsql.Open("sqlite", filepath.Join(t.TempDir(), "ddl.sqlite")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateStatementsSQLite(t *testing.T) {
	ctx := context.Background()
	stmts, err := CreateStatements(ctx, dialect.SQLite, testdb.Test.Schema)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE `author`")
	assert.Contains(t, stmts[0], "PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, stmts[1], "CREATE TABLE `book`")

	db := openSQLite(t)
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	var id int64
	err = db.QueryRowContext(ctx, "INSERT INTO author (first_name, last_name) VALUES ('Mark', 'Twain') RETURNING id").Scan(&id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	qualified, err := CreateStatements(ctx, dialect.SQLite, testdb.Test.Schema, WithQualifier("test"))
	require.NoError(t, err)
	assert.Contains(t, qualified[0], "CREATE TABLE `test`.`author`")
}

func TestCreateStatementsPostgres(t *testing.T) {
	stmts, err := CreateStatements(context.Background(), dialect.Postgres, testdb.Test.Schema)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "test"`, stmts[0])
	assert.Contains(t, stmts[1], `CREATE TABLE "test"."author"`)
	assert.Contains(t, stmts[1], `GENERATED BY DEFAULT AS IDENTITY`)
	assert.Contains(t, stmts[1], `PRIMARY KEY ("id")`)
	assert.Contains(t, stmts[2], `CREATE TABLE "test"."book"`)

	stmts, err = CreateStatements(context.Background(), dialect.Postgres, testdb.Test.Schema, IfNotExists(), WithIndent("  "))
	require.NoError(t, err)
	assert.Contains(t, stmts[1], `CREATE TABLE IF NOT EXISTS "test"."author"`)
}

func TestCreateStatementsMySQL(t *testing.T) {
	stmts, err := CreateStatements(context.Background(), dialect.MySQL, testdb.Test.Schema)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "CREATE TABLE `test`.`author`")
	assert.Contains(t, stmts[1], "AUTO_INCREMENT")
}

func TestCreateStatementsUnsupported(t *testing.T) {
	_, err := CreateStatements(context.Background(), "oracle", testdb.Test.Schema)
	require.Error(t, err)
	_, err = ToAtlas("oracle", testdb.Test.Schema)
	require.Error(t, err)
}

func TestToAtlas(t *testing.T) {
	s, err := ToAtlas(dialect.Postgres, testdb.Test.Schema)
	require.NoError(t, err)
	assert.Equal(t, "test", s.Name)
	require.Len(t, s.Tables, 2)
	author := s.Tables[0]
	assert.Equal(t, "author", author.Name)
	require.Len(t, author.Columns, 4)
	assert.False(t, author.Columns[0].Type.Null)
	assert.True(t, isIdentity(author.Columns[0].Attrs))
	assert.Equal(t, "timestamp(6) with time zone", author.Columns[3].Type.Raw)
	assert.NotNil(t, author.Columns[3].Default)
	require.NotNil(t, author.PrimaryKey)
	assert.Equal(t, "pk_author", author.PrimaryKey.Name)

	book := s.Tables[1]
	assert.True(t, book.Columns[1].Type.Null)
	assert.Nil(t, book.Columns[1].Default)
}

func TestInspectSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	stmts, err := CreateStatements(ctx, dialect.SQLite, testdb.Test.Schema)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	s, err := Inspect(ctx, db, dialect.SQLite, "")
	require.NoError(t, err)
	assert.Equal(t, "main", s.Name())
	author := s.Table("author")
	require.NotNil(t, author)
	require.Len(t, author.Fields(), 4)
	assert.True(t, author.Field("id").DataType().Identity())
	assert.False(t, author.Field("first_name").DataType().Nullable())
	assert.True(t, author.Field("created").DataType().HasDefault())
	assert.Equal(t, []string{"id"}, author.PrimaryKey().FieldNames())
	book := s.Table("book")
	require.NotNil(t, book)
	assert.True(t, book.Field("title").DataType().Nullable())

	result, err := ValidateDB(ctx, db, testdb.Test.Schema, ForDialect(dialect.SQLite))
	require.NoError(t, err)
	assert.False(t, result.HasErrors(), result.String())

	_, err = db.ExecContext(ctx, "ALTER TABLE book ADD COLUMN isbn TEXT")
	require.NoError(t, err)
	result, err = ValidateDB(ctx, db, testdb.Test.Schema, ForDialect(dialect.SQLite))
	require.NoError(t, err)
	assert.False(t, result.HasErrors())
	require.True(t, result.HasWarnings())
	assert.Contains(t, result.String(), "test.book.isbn: column is not described")
}

func authorTable(schema string, mod func(*sql.TableImpl)) *sql.TableImpl {
	t := sql.NewTable(schema, "author", sql.TablePrimaryKey("pk_author", "id"))
	t.AddColumn("id", sql.Integer.NotNull().AsIdentity())
	t.AddColumn("first_name", sql.Varchar.WithLength(100).NotNull())
	t.AddColumn("last_name", sql.Varchar.WithLength(100).NotNull())
	if mod != nil {
		mod(t)
	}
	return t
}

func TestValidate(t *testing.T) {
	expected := sql.NewSchema("test", authorTable("test", nil), sql.NewTable("test", "publisher"))
	actual := sql.NewSchema("test", authorTable("test", func(t *sql.TableImpl) {
		t.AddColumn("first_name", sql.Text.NotNull())
		t.AddColumn("last_name", sql.Varchar.WithLength(100))
		t.AddColumn("nickname", sql.Text)
	}))

	result := Validate(expected, actual)
	require.True(t, result.HasErrors())
	assert.True(t, result.HasBreakingChanges())
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.Error())
	}
	assert.ElementsMatch(t, []string{
		"test.author.first_name: column type is text, expected varchar(100)",
		"test.author.last_name: column nullability is NULL, expected NOT NULL",
		"test.publisher: table does not exist",
	}, msgs)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "test.author.nickname: column is not described", result.Warnings[0].Error())
	require.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "3 validation error(s)")

	// Types compare as rendered for the dialect: varchar and text are the
	// same on SQLite.
	result = Validate(expected, actual, ForDialect(dialect.SQLite), AllowNullabilityMismatch())
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Warnings, 2)
}

func TestValidateColumns(t *testing.T) {
	expected := sql.NewSchema("test", authorTable("test", func(t *sql.TableImpl) {
		t.AddColumn("created", sql.Timestamp.NotNull().WithDefault(sql.Now()))
	}))
	actual := sql.NewSchema("test", authorTable("test", func(t *sql.TableImpl) {
		t.AddColumn("id", sql.Integer.NotNull())
		t.SetPrimaryKey("author_pkey", "first_name")
	}))

	result := Validate(expected, actual)
	var errs, warns []string
	for _, e := range result.Errors {
		errs = append(errs, e.Error())
	}
	for _, w := range result.Warnings {
		warns = append(warns, w.Error())
	}
	assert.ElementsMatch(t, []string{
		"test.author.created: column does not exist",
		"test.author: primary key columns are (first_name), expected (id)",
	}, errs)
	assert.Equal(t, []string{"test.author.id: column identity is false, expected true"}, warns)

	result = Validate(expected, actual, AllowMissingColumn())
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Warnings, 2)

	ok := Validate(expected, expected)
	assert.False(t, ok.HasErrors())
	assert.False(t, ok.HasWarnings())
	assert.Equal(t, "No issues found", ok.String())
	assert.NoError(t, ok.Err())
}

func TestCheck(t *testing.T) {
	result := Check(testdb.Test.Schema)
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings())

	logs := sql.NewTable("test", "log")
	logs.AddColumn("msg", sql.Text)
	broken := sql.NewTable("test", "broken", sql.TablePrimaryKey("pk_broken", "missing"))
	broken.AddColumn("id", sql.Integer)
	result = Check(sql.NewSchema("test", logs, broken, sql.NewTable("test", "log")))
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "test.log: table has no primary key", result.Warnings[0].Error())
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "test.broken: primary key pk_broken has no known columns", result.Errors[0].Error())
	assert.Equal(t, "test.log: duplicate table name", result.Errors[1].Error())
	assert.Contains(t, result.String(), "Errors:\n  - test.broken")
}
