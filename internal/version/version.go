// Package version carries build metadata stamped in at link time, e.g.:
//
//	go build -ldflags "-X github.com/valshi/whaletracker/internal/version.Version=1.0.0 \
//	                   -X github.com/valshi/whaletracker/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/valshi/whaletracker/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	Version   = "dev"     // semantic version
	Commit    = "unknown" // short git hash
	BuildTime = "unknown" // UTC build timestamp
)

// String renders the stamped metadata as a single line.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
