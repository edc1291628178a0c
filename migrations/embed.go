// Package migrations holds the versioned SQL schema of the revenue ledger.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql migration
//
//go:embed *.sql
var FS embed.FS
