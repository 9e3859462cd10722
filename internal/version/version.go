package version

import "fmt"

// These variables are set at build time via ldflags
var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns the version line printed by `trails version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, shortSHA(), BuildTime)
}

func shortSHA() string {
	if len(GitSHA) > 7 {
		return GitSHA[:7]
	}
	return GitSHA
}
