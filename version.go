package racketbot

import _ "embed"

// Version is the release of the racketbot module, read from the VERSION file.
//
//go:embed VERSION
var Version string
