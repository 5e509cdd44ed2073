package gen

import (
	"go/token"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/typedsql/dialect/sql"
)

// acronyms are written in upper case in Go identifiers.
var acronyms = []string{"UUID", "JSON", "HTML", "HTTP", "URL", "SQL", "API", "ID"}

var nameRules = func() *inflect.Ruleset {
	rs := inflect.NewDefaultRuleset()
	for _, a := range acronyms {
		rs.AddAcronym(a)
	}
	return rs
}()

// pascal turns a SQL name into an exported Go identifier: "first_name"
// becomes "FirstName" and "author_id" becomes "AuthorID".
func pascal(name string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range strings.Split(nameRules.Underscore(name), "_") {
		if w == "" {
			continue
		}
		if up := strings.ToUpper(w); isAcronym(up) {
			b.WriteString(up)
			continue
		}
		b.WriteString(title.String(w))
	}
	s := b.String()
	if r, _ := utf8.DecodeRuneInString(s); s != "" && !unicode.IsLetter(r) {
		s = "X" + s
	}
	return s
}

func isAcronym(s string) bool {
	for _, a := range acronyms {
		if a == s {
			return true
		}
	}
	return false
}

func validIdent(s string) bool {
	return token.IsIdentifier(s) && token.IsExported(s)
}

var (
	// tableReserved holds the names a column field of a table type can not
	// take: the promoted TableImpl methods and the generated ones.
	tableReserved = reservedNames(reflect.TypeOf((*sql.TableImpl)(nil)), "TableImpl", "As", "Rename", "Schema", "PrimaryKey")
	// recordReserved holds the names a record accessor can not take.
	recordReserved = reservedNames(reflect.TypeOf((*sql.Record)(nil)), "Record")
)

func reservedNames(t reflect.Type, extra ...string) map[string]bool {
	names := make(map[string]bool, t.NumMethod()+len(extra))
	for i := 0; i < t.NumMethod(); i++ {
		names[t.Method(i).Name] = true
	}
	for _, n := range extra {
		names[n] = true
	}
	return names
}

// columnName returns the Go name of a column, suffixed with "Col" when
// the plain name would shadow a method of the table or record types.
func columnName(name string) string {
	n := pascal(name)
	if tableReserved[n] || recordReserved[n] || recordReserved["Set"+n] {
		n += "Col"
	}
	return n
}

// fileName returns the file generated for a table or schema.
func fileName(name string) string {
	base := strings.ToLower(nameRules.Underscore(name))
	if strings.HasSuffix(base, "_test") {
		base += "_table"
	}
	return base + ".go"
}
