package common

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release of this build.
func Version() string {
	return strings.TrimSpace(version)
}

// ServerName is the default value of the Server response header.
func ServerName() string {
	return "retrofit/" + Version()
}
