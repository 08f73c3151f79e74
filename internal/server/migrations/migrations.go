// Package migrations embeds the goose SQL migrations of the view service.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
