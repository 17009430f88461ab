// Package version reports the build version of the embassy binaries.
package version

import "strings"

// Version is set at build time:
//
//	go build -ldflags "-X github.com/ShayCichocki/embassy/internal/version.Version=1.2.0"
var Version = "dev"

// Get returns the current version, with whitespace trimmed
func Get() string {
	return strings.TrimSpace(Version)
}
