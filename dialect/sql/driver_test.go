package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql/dialect"
)

func mockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return OpenDB(dialect.Postgres, db), mock
}

func TestOpenDB(t *testing.T) {
	for driverName, want := range map[string]string{
		"postgres": dialect.Postgres,
		"pgx":      dialect.Postgres,
		"mysql":    dialect.MySQL,
		"sqlite":   dialect.SQLite,
		"sqlite3":  dialect.SQLite,
		"oracle":   "oracle",
	} {
		t.Run(driverName, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			drv := OpenDB(driverName, db)
			assert.Equal(t, want, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverQuery(t *testing.T) {
	drv, mock := mockDriver(t)
	ctx := context.Background()
	query := `SELECT "test"."author"."first_name" FROM "test"."author" WHERE "test"."author"."id" = $1`

	mock.ExpectQuery(`SELECT "test"\."author"\."first_name" FROM "test"\."author" WHERE "test"\."author"\."id" = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"first_name"}).AddRow("Mark").AddRow("Anna"))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, query, []any{1}, rows))
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"Mark", "Anna"}, names)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows = &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT 1", nil, rows), "nil arguments")
	require.NoError(t, rows.Close())

	cause := errors.New(`relation "test.author" does not exist`)
	mock.ExpectQuery("SELECT").WillReturnError(cause)
	err := drv.Query(ctx, query, []any{1}, &Rows{})
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dialect/sql: query")
	require.NoError(t, mock.ExpectationsWereMet())

	err = drv.Query(ctx, "SELECT 1", 1, &Rows{})
	assert.ErrorContains(t, err, "unexpected arguments type int")
	err = drv.Query(ctx, "SELECT 1", []any{}, new(sql.Rows))
	assert.ErrorContains(t, err, "unexpected result type")
}

func TestDriverExec(t *testing.T) {
	drv, mock := mockDriver(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "test"\."book" SET "title" = \$1 WHERE "test"\."book"\."id" = \$2`).
		WithArgs("1984", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	var res Result
	err := drv.Exec(ctx, `UPDATE "test"."book" SET "title" = $1 WHERE "test"."book"."id" = $2`, []any{"1984", 1}, &res)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, drv.Exec(ctx, `DELETE FROM "test"."book"`, []any{}, nil))

	mock.ExpectExec("DELETE").WillReturnError(errors.New("violates foreign key constraint"))
	err = drv.Exec(ctx, `DELETE FROM "test"."author"`, []any{}, nil)
	assert.ErrorContains(t, err, "dialect/sql: exec: violates foreign key constraint")
	require.NoError(t, mock.ExpectationsWereMet())

	// Invalid results are rejected before the statement runs.
	err = drv.Exec(ctx, "DELETE", []any{}, new(int))
	assert.ErrorContains(t, err, "unexpected result type *int")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTx(t *testing.T) {
	drv, mock := mockDriver(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, `INSERT INTO "test"."author" DEFAULT VALUES`, []any{}, nil))
	rows := &Rows{}
	require.NoError(t, tx.Query(ctx, `SELECT COUNT(*) FROM "test"."author"`, []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()
	tx, err = drv.BeginTx(ctx, &TxOptions{Isolation: sql.LevelDefault})
	require.NoError(t, err)
	require.Error(t, tx.Exec(ctx, `INSERT INTO "test"."author" DEFAULT VALUES`, []any{}, nil))
	require.NoError(t, tx.Rollback())

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
	_, err = drv.Tx(ctx)
	assert.ErrorContains(t, err, "dialect/sql: begin")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverCanceledContext(t *testing.T) {
	drv, mock := mockDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
	err := drv.Query(ctx, "SELECT 1", []any{}, &Rows{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriverClose(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectClose()
	require.NoError(t, drv.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
