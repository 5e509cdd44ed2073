package testdb

import "embed"

//go:generate go run ../../cmd/typedsql generate --config ../../compiler/load/testdata/test.yaml --out .

// Migrations holds the SQLite migrations creating the test schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
