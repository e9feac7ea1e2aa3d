package concord

import (
	_ "embed"
)

// Version is the release of the concord module, read from the VERSION file.
//
//go:embed VERSION
var Version string
