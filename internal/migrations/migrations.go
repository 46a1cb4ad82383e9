// Package migrations embeds the goose SQL migrations for the FieldLog
// schema. The statements are portable between SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
