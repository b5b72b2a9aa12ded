// Package migrations holds the versioned record store schema.
//
// Files are named NNN_name.up.sql / NNN_name.down.sql; the store applies
// every up file above the recorded schema version in order.
package migrations

import "embed"

// FS exposes the migration scripts.
//
//go:embed *.sql
var FS embed.FS
