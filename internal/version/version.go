package version

import "fmt"

// Build-time variables set by ldflags, e.g.
// -X github.com/MeKo-Tech/linecrop/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("linecrop version %s", Version)
}
