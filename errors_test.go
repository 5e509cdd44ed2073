package typedsql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/sqlerr"
)

func TestNotFoundError(t *testing.T) {
	err := typedsql.NewNotFoundError("test.author")
	assert.Equal(t, "typedsql: no rows in test.author", err.Error())
	assert.ErrorIs(t, err, typedsql.ErrNotFound)
	assert.True(t, typedsql.IsNotFound(fmt.Errorf("fetch: %w", err)))
	assert.True(t, typedsql.IsNotFound(typedsql.ErrNotFound))
	assert.False(t, typedsql.IsNotFound(errors.New("other")))
	assert.False(t, typedsql.IsNotFound(nil))

	var nf *typedsql.NotFoundError
	require.ErrorAs(t, fmt.Errorf("fetch: %w", err), &nf)
	assert.Equal(t, "test.author", nf.Table)
}

func TestNotSingularError(t *testing.T) {
	err := typedsql.NewNotSingularError("test.book", 3)
	assert.Equal(t, "typedsql: 3 rows in test.book, expected one", err.Error())
	assert.Equal(t, 3, err.Rows)
	assert.ErrorIs(t, err, typedsql.ErrNotSingular)
	assert.True(t, typedsql.IsNotSingular(fmt.Errorf("wrap: %w", err)))
	assert.False(t, typedsql.IsNotSingular(typedsql.NewNotFoundError("x")))
	assert.False(t, typedsql.IsNotFound(err))
}

func TestConstraintError(t *testing.T) {
	underlying := &pq.Error{Code: "23505", Constraint: "pk_author", Message: "duplicate key"}
	err := typedsql.AsConstraintError(fmt.Errorf("insert: %w", underlying))
	require.True(t, typedsql.IsConstraintError(err))
	assert.Equal(t, `typedsql: unique constraint "pk_author" violated`, err.Error())
	assert.ErrorAs(t, err, new(*pq.Error))
	// Already classified errors are returned as they are.
	assert.Equal(t, err, typedsql.AsConstraintError(err))

	var ce typedsql.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, sqlerr.Unique, ce.Kind())
	assert.Equal(t, "pk_author", ce.Name)

	err = typedsql.AsConstraintError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, sqlerr.ForeignKey, ce.Kind())
	assert.Empty(t, ce.Name)
	assert.Contains(t, err.Error(), "typedsql: foreign key constraint violated")
	assert.Contains(t, err.Error(), "Cannot add or update a child row")

	plain := errors.New("connection reset")
	assert.Same(t, plain, typedsql.AsConstraintError(plain))
	assert.Nil(t, typedsql.AsConstraintError(nil))
	assert.False(t, typedsql.IsConstraintError(plain))
	assert.False(t, typedsql.IsConstraintError(nil))
}

func TestRollbackError(t *testing.T) {
	underlying := errors.New("connection lost")
	err := &typedsql.RollbackError{Err: underlying}
	assert.Equal(t, "typedsql: rollback: connection lost", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestQueryAndMutationErrors(t *testing.T) {
	underlying := errors.New("boom")
	qe := typedsql.NewQueryError("test.author", "fetch one", underlying)
	assert.Equal(t, "typedsql: fetch one from test.author: boom", qe.Error())
	assert.True(t, typedsql.IsQueryError(fmt.Errorf("x: %w", qe)))
	assert.ErrorIs(t, qe, underlying)

	me := typedsql.NewMutationError("test.book", "update", typedsql.ErrNoChanges)
	assert.Equal(t, "typedsql: update test.book: "+sql.ErrNoChanges.Error(), me.Error())
	assert.True(t, typedsql.IsMutationError(me))
	assert.ErrorIs(t, me, sql.ErrNoChanges)
	assert.False(t, typedsql.IsMutationError(qe))
	assert.False(t, typedsql.IsQueryError(me))
}

func TestSentinelErrors(t *testing.T) {
	assert.Same(t, sql.ErrNoPrimaryKey, typedsql.ErrNoPrimaryKey)
	assert.Same(t, sql.ErrNoChanges, typedsql.ErrNoChanges)
	assert.Contains(t, typedsql.ErrTxStarted.Error(), "transaction")
}
