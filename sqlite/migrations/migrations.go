// Package migrations contains the embedded sql migration scripts applied by
// the sqlite migrator at startup.
package migrations

import "embed"

//go:embed *.sql
var All embed.FS
