// Package version provides build-time version information.
package version

// Set via -ldflags "-X github.com/jobber-dev/jobber/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Info is reported by the health endpoint.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
}

// Current returns the version of the running binary.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit}
}
