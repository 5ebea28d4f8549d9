// Package migrations holds the versioned schema for the diagram cache.
// Files are named NNN_name.up.sql and applied in order.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
