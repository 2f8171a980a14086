package migrations

import "embed"

// FS holds the SQL migrations applied at startup through the golang-migrate
// iofs source.
//
//go:embed *.sql
var FS embed.FS
