// Package migrations embeds the SQL schema migrations applied by cmd/migrate.
package migrations

import "embed"

// FS holds the numbered *.up.sql / *.down.sql pairs
//
//go:embed *.sql
var FS embed.FS
