// Package version holds the track-planner build stamp.
package version

import "fmt"

// Set with -ldflags "-X track-planner/internal/version.Version=..." at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line build description.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
