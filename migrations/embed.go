// Package migrations embeds the SQL migration files for schema management.
// Each driver has its own directory because the dialects disagree on
// timestamp and boolean handling.
package migrations

import "embed"

// FS holds the embedded migration files, one subdirectory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
