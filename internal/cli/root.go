package cli

import (
	"fmt"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization
// with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

func versionTemplate() string {
	return fmt.Sprintf("aerogram %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}
