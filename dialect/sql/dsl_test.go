package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/internal/testdb"
)

func ptr[T any](v T) *T { return &v }

func TestSelectFrom(t *testing.T) {
	author := testdb.Author
	q := sql.Dialect(dialect.Postgres).SelectFrom(author).Where(author.ID.EQ(1))
	query, args := q.Query()
	assert.Equal(t, `SELECT "test"."author"."id", "test"."author"."first_name", "test"."author"."last_name", "test"."author"."created" FROM "test"."author" WHERE "test"."author"."id" = $1`, query)
	assert.Equal(t, []any{int32(1)}, args)
	require.NoError(t, q.Err())

	q = sql.Dialect(dialect.MySQL).Select(author.FirstName).From(author).Where(author.ID.EQ(1))
	query, _ = q.Query()
	assert.Equal(t, "SELECT `test`.`author`.`first_name` FROM `test`.`author` WHERE `test`.`author`.`id` = ?", query)
}

func TestSelectAliased(t *testing.T) {
	a := testdb.Author.As("a")
	q := sql.Dialect(dialect.Postgres).Select(a.FirstName).From(a).Where(a.ID.GT(10))
	query, args := q.Query()
	assert.Equal(t, `SELECT "a"."first_name" FROM "test"."author" AS "a" WHERE "a"."id" > $1`, query)
	assert.Equal(t, []any{int32(10)}, args)
}

func TestTablesOf(t *testing.T) {
	b := testdb.Book.As("b")
	q := sql.Dialect(dialect.Postgres).
		Select(testdb.Author.FirstName).
		From(testdb.Author).
		Join(b).On(b.AuthorID.EQField(testdb.Author.ID))
	assert.Equal(t, []string{"test.author", "test.book"}, sql.TablesOf(q))
	assert.Equal(t, []string{"test.book"}, sql.TablesOf(sql.Dialect(dialect.MySQL).DeleteFrom(b).Where(b.ID.EQ(3))))
	assert.Equal(t, []string{"test.author"}, sql.TablesOf(sql.Dialect(dialect.Postgres).Update(testdb.Author).Set(testdb.Author.LastName, "Clemens")))
	assert.Empty(t, sql.TablesOf(sql.Dialect(dialect.Postgres).Select(sql.Count())))
}

func TestSelectJoin(t *testing.T) {
	author, b := testdb.Author, testdb.Book.As("b")
	q := sql.Dialect(dialect.Postgres).
		Select(author.FirstName, b.Title).
		From(author).
		Join(b).On(b.AuthorID.EQField(author.ID)).
		OrderBy(b.Title.Desc()).
		Limit(10).
		Offset(5)
	query, args := q.Query()
	assert.Equal(t, `SELECT "test"."author"."first_name", "b"."title" FROM "test"."author" JOIN "test"."book" AS "b" ON "b"."author_id" = "test"."author"."id" ORDER BY "b"."title" DESC LIMIT 10 OFFSET 5`, query)
	assert.Empty(t, args)

	q = sql.Dialect(dialect.Postgres).Select().From(author).LeftJoin(b).On(b.AuthorID.EQField(author.ID))
	assert.Len(t, q.Fields(), len(author.Fields())+len(b.Fields()))

	err := sql.Dialect(dialect.Postgres).SelectFrom(author).On(author.ID.EQ(1)).Err()
	require.Error(t, err)
}

func TestSelectConditions(t *testing.T) {
	author := testdb.Author
	q := sql.Dialect(dialect.Postgres).
		Select(author.ID).
		From(author).
		Where(
			author.ID.GT(1),
			sql.Or(author.FirstName.EQ("Mark"), author.LastName.NEQ("Twain")),
			author.Created.NotNull(),
		)
	query, args := q.Query()
	assert.Equal(t, `SELECT "test"."author"."id" FROM "test"."author" WHERE ("test"."author"."id" > $1 AND ("test"."author"."first_name" = $2 OR "test"."author"."last_name" <> $3) AND "test"."author"."created" IS NOT NULL)`, query)
	assert.Equal(t, []any{int32(1), "Mark", "Twain"}, args)

	q = sql.Dialect(dialect.Postgres).Select(author.ID).From(author).
		Where(sql.Not(author.ID.In(1, 2)), author.LastName.NotIn())
	query, args = q.Query()
	assert.Equal(t, `SELECT "test"."author"."id" FROM "test"."author" WHERE (NOT ("test"."author"."id" IN ($1, $2)) AND 1 = 1)`, query)
	assert.Equal(t, []any{int32(1), int32(2)}, args)
}

func TestFieldAlias(t *testing.T) {
	name := testdb.Author.FirstName.As("name")
	q := sql.Dialect(dialect.Postgres).Select(name).From(testdb.Author).OrderBy(name.Asc())
	assert.Equal(t, `SELECT "test"."author"."first_name" AS "name" FROM "test"."author" ORDER BY "name" ASC`, q.String())
	assert.Equal(t, "name", name.Name())
}

func TestSelectString(t *testing.T) {
	q := sql.Dialect(dialect.Postgres).Select(testdb.Author.ID).From(testdb.Author).
		Where(testdb.Author.LastName.EQ("O'Brien"))
	assert.Equal(t, `SELECT "test"."author"."id" FROM "test"."author" WHERE "test"."author"."last_name" = 'O''Brien'`, q.String())
}

func TestSelectSQLiteOffset(t *testing.T) {
	q := sql.Dialect(dialect.SQLite).SelectFrom(testdb.Book).Offset(2)
	query, _ := q.Query()
	assert.Contains(t, query, "LIMIT -1 OFFSET 2")
}

func TestInsertRecord(t *testing.T) {
	r := testdb.NewBookRecord().SetTitle(ptr("Title")).SetPages(ptr(int32(100)))
	q := sql.Dialect(dialect.Postgres).InsertRecord(r.Record)
	query, args := q.Query()
	assert.Equal(t, `INSERT INTO "test"."book" ("title", "pages") VALUES ($1, $2)`, query)
	assert.Equal(t, []any{"Title", int32(100)}, args)
	assert.Equal(t, `INSERT INTO "test"."book" ("title", "pages") VALUES ('Title', 100)`, q.String())

	q = sql.Dialect(dialect.Postgres).InsertRecord(testdb.NewBookRecord().Record)
	assert.Equal(t, `INSERT INTO "test"."book" DEFAULT VALUES`, q.String())
	q = sql.Dialect(dialect.MySQL).InsertRecord(testdb.NewBookRecord().Record)
	assert.Equal(t, "INSERT INTO `test`.`book` () VALUES ()", q.String())
}

func TestInsertReturning(t *testing.T) {
	author := testdb.Author
	q := sql.Dialect(dialect.Postgres).InsertInto(author).
		Set(author.FirstName, "Mark").
		Set(author.LastName, "Twain").
		Returning(author.ID, author.Created)
	query, args := q.Query()
	assert.Equal(t, `INSERT INTO "test"."author" ("first_name", "last_name") VALUES ($1, $2) RETURNING "id", "created"`, query)
	assert.Equal(t, []any{"Mark", "Twain"}, args)

	q = sql.Dialect(dialect.MySQL).InsertInto(author).Set(author.FirstName, "Mark").Returning(author.ID)
	query, _ = q.Query()
	assert.NotContains(t, query, "RETURNING")
}

func TestInsertValues(t *testing.T) {
	book := testdb.Book
	q := sql.Dialect(dialect.SQLite).InsertInto(book).
		Columns(book.Title, book.Pages).
		Values("A", 1).
		Values("B", 2)
	query, args := q.Query()
	assert.Equal(t, `INSERT INTO "test"."book" ("title", "pages") VALUES (?, ?), (?, ?)`, query)
	assert.Equal(t, []any{"A", 1, "B", 2}, args)

	err := sql.Dialect(dialect.SQLite).InsertInto(book).Columns(book.Title).Values("A", 1).Err()
	require.Error(t, err)
}

func TestUpsert(t *testing.T) {
	r := testdb.NewAuthorRecord().SetID(1).SetFirstName("Mark")
	q := sql.Dialect(dialect.Postgres).InsertRecord(r.Record).OnConflictDoUpdate()
	query, args := q.Query()
	assert.Equal(t, `INSERT INTO "test"."author" ("id", "first_name") VALUES ($1, $2) ON CONFLICT ("id") DO UPDATE SET "first_name" = EXCLUDED."first_name"`, query)
	assert.Equal(t, []any{int32(1), "Mark"}, args)

	q = sql.Dialect(dialect.MySQL).InsertRecord(r.Record).OnConflictDoUpdate()
	query, _ = q.Query()
	assert.Equal(t, "INSERT INTO `test`.`author` (`id`, `first_name`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `first_name` = VALUES(`first_name`)", query)

	q = sql.Dialect(dialect.SQLite).InsertRecord(testdb.NewAuthorRecord().SetID(1).Record).OnConflictDoUpdate()
	query, _ = q.Query()
	assert.Equal(t, `INSERT INTO "test"."author" ("id") VALUES (?) ON CONFLICT ("id") DO NOTHING`, query)

	logs := sql.NewTable("test", "log")
	logs.AddColumn("msg", sql.Text)
	err := sql.Dialect(dialect.Postgres).InsertInto(logs).OnConflictDoUpdate().Err()
	require.ErrorIs(t, err, sql.ErrNoPrimaryKey)
}

func TestUpdateRecord(t *testing.T) {
	r := testdb.NewAuthorRecord()
	require.NoError(t, r.Load([]any{int64(1), "Samuel", "Clemens", "2024-03-01 10:30:00"}))
	r.SetFirstName("Mark")

	q := sql.Dialect(dialect.Postgres).UpdateRecord(r.Record)
	query, args := q.Query()
	assert.Equal(t, `UPDATE "test"."author" SET "first_name" = $1 WHERE "test"."author"."id" = $2`, query)
	assert.Equal(t, []any{"Mark", int32(1)}, args)
	require.NoError(t, q.Err())

	// Without a primary key value, the row is matched with IS NULL.
	q = sql.Dialect(dialect.Postgres).UpdateRecord(testdb.NewAuthorRecord().SetFirstName("Mark").Record)
	assert.Equal(t, `UPDATE "test"."author" SET "first_name" = 'Mark' WHERE "test"."author"."id" IS NULL`, q.String())
}

func TestUpdateRecordErrors(t *testing.T) {
	logs := sql.NewTable("test", "log")
	logs.AddColumn("msg", sql.Text)
	r := sql.NewRecord(logs)
	require.NoError(t, r.Set("msg", "hello"))
	err := sql.Dialect(dialect.Postgres).UpdateRecord(r).Err()
	require.ErrorIs(t, err, sql.ErrNoPrimaryKey)

	unchanged := testdb.NewAuthorRecord()
	require.NoError(t, unchanged.Load([]any{int64(1), "Mark", "Twain", "2024-03-01 10:30:00"}))
	err = sql.Dialect(dialect.Postgres).UpdateRecord(unchanged.Record).Err()
	require.ErrorIs(t, err, sql.ErrNoChanges)
}

func TestUpdate(t *testing.T) {
	book := testdb.Book
	q := sql.Dialect(dialect.Postgres).Update(book).
		Set(book.Pages, 10).
		SetNull(book.AuthorID).
		Where(book.Title.EQ("1984")).
		Returning(book.ID)
	query, args := q.Query()
	assert.Equal(t, `UPDATE "test"."book" SET "pages" = $1, "author_id" = $2 WHERE "test"."book"."title" = $3 RETURNING "id"`, query)
	assert.Equal(t, []any{10, nil, "1984"}, args)
	assert.Equal(t, `UPDATE "test"."book" SET "pages" = 10, "author_id" = NULL WHERE "test"."book"."title" = '1984' RETURNING "id"`, q.String())
}

func TestDelete(t *testing.T) {
	book := testdb.Book
	q := sql.Dialect(dialect.Postgres).DeleteFrom(book).Where(book.AuthorID.IsNull())
	assert.Equal(t, `DELETE FROM "test"."book" WHERE "test"."book"."author_id" IS NULL`, q.String())

	q = sql.Dialect(dialect.MySQL).DeleteFrom(book.As("b")).Where(book.ID.EQ(3))
	query, args := q.Query()
	assert.Equal(t, "DELETE FROM `test`.`book` WHERE `test`.`book`.`id` = ?", query)
	assert.Equal(t, []any{int32(3)}, args)
}
