package sqlexec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql"
	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/sqlexec"
	"github.com/syssam/typedsql/internal/testdb"
)

var authorColumns = []string{"id", "first_name", "last_name", "created"}

func mockContext(t *testing.T, name string) (*sqlexec.Context, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlexec.New(sql.OpenDB(name, db)), mock
}

func TestCreatePostgres(t *testing.T) {
	c, mock := mockContext(t, dialect.Postgres)
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO "test"."author" ("first_name", "last_name") VALUES ($1, $2) RETURNING "id", "first_name", "last_name", "created"`).
		WithArgs("Mark", "Twain").
		WillReturnRows(sqlmock.NewRows(authorColumns).AddRow(int64(3), "Mark", "Twain", created))

	a, err := sqlexec.Create(context.Background(), c, testdb.NewAuthorRecord, func(a *testdb.AuthorRecord) {
		a.SetFirstName("Mark").SetLastName("Twain")
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), a.ID())
	assert.Equal(t, created, a.Created())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMySQL(t *testing.T) {
	c, mock := mockContext(t, dialect.MySQL)
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO `test`.`author` (`first_name`, `last_name`) VALUES (?, ?)").
		WithArgs("Mark", "Twain").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT `test`.`author`.`id`, `test`.`author`.`first_name`, `test`.`author`.`last_name`, `test`.`author`.`created` FROM `test`.`author` WHERE `test`.`author`.`id` = ?").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(authorColumns).AddRow(int64(3), []byte("Mark"), []byte("Twain"), created))

	a, err := sqlexec.Create(context.Background(), c, testdb.NewAuthorRecord, func(a *testdb.AuthorRecord) {
		a.SetFirstName("Mark").SetLastName("Twain")
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), a.ID())
	assert.Equal(t, "Twain", a.LastName())
	assert.False(t, a.Changed())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMySQL(t *testing.T) {
	c, mock := mockContext(t, dialect.MySQL)
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO `test`.`author` (`id`, `first_name`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `first_name` = VALUES(`first_name`)").
		WithArgs(int64(1), "Mark").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectQuery("SELECT `test`.`author`.`id`, `test`.`author`.`first_name`, `test`.`author`.`last_name`, `test`.`author`.`created` FROM `test`.`author` WHERE `test`.`author`.`id` = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(authorColumns).AddRow(int64(1), "Mark", "Twain", created))

	r := testdb.NewAuthorRecord().SetID(1).SetFirstName("Mark")
	require.NoError(t, c.Upsert(context.Background(), r.Record))
	assert.Equal(t, "Twain", r.LastName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecordPostgres(t *testing.T) {
	c, mock := mockContext(t, dialect.Postgres)
	r := testdb.NewBookRecord()
	require.NoError(t, r.Load([]any{int64(5), int64(1), "Emma", nil}))
	r.SetPages(ptr(int32(320)))
	mock.ExpectExec(`UPDATE "test"."book" SET "pages" = $1 WHERE "test"."book"."id" = $2`).
		WithArgs(int64(320), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, updated, err := c.UpdateIfChanged(context.Background(), r.Record)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollbackError(t *testing.T) {
	c, mock := mockContext(t, dialect.Postgres)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	boom := errors.New("boom")
	err := c.Transaction(context.Background(), func(*sqlexec.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	var re *typedsql.RollbackError
	require.ErrorAs(t, err, &re)
	assert.EqualError(t, re.Err, "connection lost")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sql.NewStatsDriver(sql.OpenDB(dialect.Postgres, db))
	c := sqlexec.New(drv)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := sqlexec.FetchValue[int64](context.Background(), c, c.DSL().Select(sql.Count()).From(testdb.Book))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, int64(1), drv.QueryStats().Snapshot().Kind(sql.SelectStatement).Count)
	assert.Equal(t, dialect.Postgres, c.Dialect())
}
