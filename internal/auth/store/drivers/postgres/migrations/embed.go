// Package migrations embeds the Postgres schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
