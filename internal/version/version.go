// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Release   = "dev"
	GitCommit = "unknown"
	GOOS      = "unknown"
	GOARCH    = "unknown"
)

// String returns the release, commit, and target platform.
func String() string {
	return fmt.Sprintf(
		"%s (commit: %s, %s/%s)", Release, GitCommit, GOOS, GOARCH,
	)
}
