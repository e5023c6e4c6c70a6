// Package migrations embeds the postgres schema migrations so the binaries
// and the integration tests apply the same DDL.
package migrations

import "embed"

// FS holds the NNNNNN_name.up.sql / .down.sql pairs read by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
