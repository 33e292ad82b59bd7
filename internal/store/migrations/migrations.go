// Package migrations embeds the goose migrations applied to every daybook
// SQLite database, client and server alike.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
