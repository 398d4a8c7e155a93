// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for `aaisp version`.
func String() string {
	return fmt.Sprintf("aaisp %s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent is sent with every CHAOS request.
func UserAgent() string {
	return "aaisp/" + Version
}
