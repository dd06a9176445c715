// Package migrations embeds SQL migration files for the SQLite store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// Files are named NNN_description.up.sql / NNN_description.down.sql.
//
//go:embed *.sql
var FS embed.FS
