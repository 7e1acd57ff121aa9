package vigil

import _ "embed"

// Version is the current version of vigil, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
