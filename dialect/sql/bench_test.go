package sql_test

import (
	"testing"

	"github.com/syssam/typedsql/dialect"
	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/internal/testdb"
)

var dialects = []string{dialect.SQLite, dialect.MySQL, dialect.Postgres}

func BenchmarkInsertRecord(b *testing.B) {
	r := testdb.NewAuthorRecord().SetFirstName("Ariel").SetLastName("Mashraki")
	for _, d := range dialects {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sql.Dialect(d).InsertRecord(r.Record).Returning(testdb.Author.ID).Query()
			}
		})
	}
}

func BenchmarkSelectSimple(b *testing.B) {
	author := testdb.Author
	for _, d := range dialects {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sql.Dialect(d).SelectFrom(author).Where(author.ID.EQ(1)).Query()
			}
		})
	}
}

func BenchmarkSelectJoin(b *testing.B) {
	author, book := testdb.Author.As("a"), testdb.Book.As("b")
	for _, d := range dialects {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sql.Dialect(d).
					Select(author.FirstName, book.Title, sql.Count().As("n")).
					From(author).
					LeftJoin(book).On(book.AuthorID.EQField(author.ID)).
					Where(sql.Or(book.Pages.GT(100), book.Pages.IsNull())).
					GroupBy(author.FirstName, book.Title).
					OrderBy(author.FirstName.Asc()).
					Limit(10).
					Query()
			}
		})
	}
}

func BenchmarkUpdateRecord(b *testing.B) {
	r := testdb.NewAuthorRecord()
	if err := r.Load([]any{int64(1), "Mark", "Twain", "2024-03-01 10:30:00"}); err != nil {
		b.Fatal(err)
	}
	r.SetLastName("Clemens")
	for _, d := range dialects {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sql.Dialect(d).UpdateRecord(r.Record).Query()
			}
		})
	}
}

func BenchmarkInlined(b *testing.B) {
	q := sql.Dialect(dialect.Postgres).SelectFrom(testdb.Book).Where(testdb.Book.Title.EQ("O'Brien"))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = q.String()
	}
}
