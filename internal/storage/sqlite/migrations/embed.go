// Package migrations embeds the SQLite save-store schema.
package migrations

import "embed"

// FS contains the SQLite migrations.
//
//go:embed *.sql
var FS embed.FS
