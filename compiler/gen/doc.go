// Package gen generates typed descriptor packages from runtime schema
// metadata.
//
// A descriptor package holds one file per table and one file for the schema
// root. For the schema "test" with the tables "author" and "book" it holds:
//
//	test.go    TestSchema, and the singleton Test
//	author.go  AuthorTable, the singleton Author, and AuthorRecord
//	book.go    BookTable, the singleton Book, and BookRecord
//
// Table types embed *sql.TableImpl and expose one sql.TableField per
// column. They add As, Rename, Schema and, for tables with a primary key,
// PrimaryKey. Record types embed *sql.Record and expose a getter and a
// setter per column. Nullable columns are read and written through
// pointers.
//
// # Naming
//
// SQL names are converted to exported Go names: "author_id" becomes
// "AuthorID". Column names that would shadow a method of sql.TableImpl or
// sql.Record get the suffix "Col".
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: a schema that can not be turned into a package
//   - ConfigError: invalid options
//   - GenerationError: rendering, formatting or writing failures
//
// Example error handling:
//
//	if err := gen.Generate(ctx, s, gen.WithTarget(dir)); err != nil {
//	    if errors.Is(err, gen.ErrInvalidSchema) {
//	        // fix the definition
//	    }
//	    return err
//	}
package gen
