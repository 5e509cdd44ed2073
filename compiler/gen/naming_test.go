package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"author", "Author"},
		{"first_name", "FirstName"},
		{"author_id", "AuthorID"},
		{"book_uuid", "BookUUID"},
		{"api_url", "APIURL"},
		{"html__body", "HTMLBody"},
		{"_private", "Private"},
		{"createdAt", "CreatedAt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, pascal(tt.in))
		})
	}
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "FirstName", columnName("first_name"))
	// Promoted from sql.TableImpl.
	assert.Equal(t, "NameCol", columnName("name"))
	assert.Equal(t, "AliasCol", columnName("alias"))
	// Methods generated on table types.
	assert.Equal(t, "SchemaCol", columnName("schema"))
	// Methods of sql.Record, as getter or as setter.
	assert.Equal(t, "ValueCol", columnName("value"))
	assert.Equal(t, "ChangedCol", columnName("changed"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "author.go", fileName("author"))
	assert.Equal(t, "order_item.go", fileName("order_item"))
	assert.Equal(t, "load_test_table.go", fileName("load_test"))
}

func TestValidIdent(t *testing.T) {
	assert.True(t, validIdent("Author"))
	assert.False(t, validIdent("author"))
	assert.False(t, validIdent("Author.Name"))
	assert.False(t, validIdent(""))
}
