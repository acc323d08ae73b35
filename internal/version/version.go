// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build is a snapshot of the injected metadata.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Current returns the running binary's metadata.
func Current() Build {
	return Build{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
}

func String() string {
	b := Current()
	return fmt.Sprintf("mockview %s (commit=%s, date=%s, go=%s)", b.Version, b.Commit, b.Date, b.Go)
}
