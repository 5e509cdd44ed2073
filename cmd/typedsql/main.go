// Command typedsql generates typed table descriptors from schema definitions.
//
// Usage:
//
//	typedsql generate --config schema.yaml --out ./db [--watch]
//	typedsql ddl --config schema.yaml --dialect mysql
//	typedsql validate --config schema.yaml --dialect postgres --dsn "$DATABASE_URL"
//	typedsql inspect --dialect sqlite --dsn app.db > schema.yaml
//
// Flags default to the TYPEDSQL_* environment variables, e.g. TYPEDSQL_DSN.
package main

import (
	"os"

	"github.com/syssam/typedsql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
