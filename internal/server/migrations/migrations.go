// Package migrations embeds the PostgreSQL schema migrations applied by goose
// on server start.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
