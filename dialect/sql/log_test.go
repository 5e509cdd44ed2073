package sql_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/internal/testdb"
)

func TestTraceSQL(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: sql.LevelTrace}))
	q := sql.Dialect(dialect.Postgres).Select(testdb.Author.ID).From(testdb.Author).
		Where(testdb.Author.LastName.EQ("Twain"))

	sql.TraceSQL(context.Background(), logger, q, "")
	assert.Contains(t, buf.String(), `msg="QUERY: SELECT \"test\".\"author\".\"id\" FROM \"test\".\"author\" WHERE \"test\".\"author\".\"last_name\" = 'Twain'"`)
	assert.Contains(t, buf.String(), "level=DEBUG-4")

	buf.Reset()
	sql.TraceSQL(context.Background(), logger, testdb.Author.ID.EQ(7), "authors")
	assert.Contains(t, buf.String(), `msg="authors: \"test\".\"author\".\"id\" = 7"`)
}

func TestTraceSQLDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sql.TraceSQL(context.Background(), logger, sql.Dialect(dialect.Postgres).SelectFrom(testdb.Book), "")
	assert.Empty(t, buf.String())
}
