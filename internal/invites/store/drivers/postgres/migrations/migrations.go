package migrations

import "embed"

// Migrations holds the Postgres schema.
//
//go:embed *.sql
var Migrations embed.FS
