// Package buildinfo holds version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/m3rciful/sitebot/core/buildinfo.Version=v0.4.0 \
//	  -X github.com/m3rciful/sitebot/core/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the source revision.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)

// String renders the metadata for /help and startup logs.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
