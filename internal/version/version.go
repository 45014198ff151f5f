// Package version exposes build metadata for the startup log line.
package version

// Overridden at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
//
//nolint:revive
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
