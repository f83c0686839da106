// Package version identifies a cloak-cam build. The release pipeline stamps
// the variables via -ldflags, e.g.
//
//	go build -ldflags "-X cloak-cam/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

var (
	// Version is the semantic version of the application.
	Version = "0.1.0"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
)
