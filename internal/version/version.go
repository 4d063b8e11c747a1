//nolint:tagliatelle // superior snake-case yo.
package version

import (
	"io/fs"
	"strings"
)

var (
	// These variables are set via ldflags at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// frontendVersionFile is written next to index.html by the site build.
const frontendVersionFile = "version.txt"

// Info contains version information.
type Info struct {
	Version         string `json:"version"`
	GitCommit       string `json:"git_commit"`
	BuildDate       string `json:"build_date"`
	FrontendVersion string `json:"frontend_version,omitempty"`
}

// Get returns version information as a struct.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}

// GetWithFrontend returns version information including the version of the
// static site found in site, if any.
func GetWithFrontend(site fs.FS) Info {
	info := Get()
	info.FrontendVersion = readFrontendVersion(site)

	return info
}

func readFrontendVersion(site fs.FS) string {
	if site == nil {
		return ""
	}

	data, err := fs.ReadFile(site, frontendVersionFile)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// Short returns a short version string.
// Example: "v1.0.0".
func Short() string {
	return Version
}
