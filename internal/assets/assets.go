package assets

import "embed"

// FS holds the templates shipped with the binary, used by `lantern init`
// to scaffold a new board.
//
//go:embed config.yml
var FS embed.FS
