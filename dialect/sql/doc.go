// Package sql holds the typed metadata model and the query DSL of typedsql.
//
// # Metadata
//
// A Schema groups tables, a TableImpl groups columns, and every column has
// a DataType describing its SQL type, nullability, identity and default.
// Generated code embeds *TableImpl and exposes one TableField[T] per column,
// so the Go type of a column travels with it:
//
//	author := testdb.Author
//	author.ID          // TableField[int32]
//	author.FirstName   // TableField[string]
//
// Tables can be aliased and renamed. An alias gets its own column
// descriptors that render against the alias:
//
//	a := testdb.Author.As("a")
//	a.ID.EQ(1) // "a"."id" = $1
//
// # Queries
//
// Statements are started from a DialectBuilder:
//
//	q := sql.Dialect(dialect.Postgres).
//	    Select(author.FirstName, author.LastName).
//	    From(author).
//	    Where(author.ID.GT(10), author.LastName.NotNull()).
//	    OrderBy(author.LastName.Asc()).
//	    Limit(5)
//	query, args := q.Query()
//
// Query returns the statement with placeholders ($n on PostgreSQL, ? on
// MySQL and SQLite) and its arguments. String and Inlined return the same
// statement with all values inlined as literals, which is what TraceSQL
// logs.
//
// # Records
//
// A Record holds one value per field plus a changed flag and an original
// value per field. Loading a row resets both; setting a value marks the
// field changed. InsertRecord and UpdateRecord build statements from the
// changed fields only.
//
// # Drivers
//
// Driver adapts a *sql.DB to dialect.Driver. StatsDriver and DebugDriver
// wrap it with statistics and statement logging.
package sql
