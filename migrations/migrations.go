// Package migrations embeds the goose SQL migrations so the binary can
// migrate its database without a checkout of the repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
