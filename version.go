package cells

import _ "embed"

// Version is the release of the cells module.
//
//go:embed VERSION
var Version string
