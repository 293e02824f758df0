// Package migrations embeds the ground station's SQL schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration at its root; pass it to DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
