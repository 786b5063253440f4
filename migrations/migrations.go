// Package migrations embeds the SQL migrations for the tables this service owns.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
