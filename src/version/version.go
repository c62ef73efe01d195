package version

import "fmt"

// Flag marks development builds. It is empty on release branches.
const Flag = ""

var (
	// Version is the full version string
	Version = "1.0.0"

	// GitCommit is set with --ldflags "-X github.com/b2slc/slowcontrol/src/version.GitCommit=$(git rev-parse HEAD)"
	GitCommit string
)

func init() {
	if Flag != "" {
		Version += "-" + Flag
	}

	if len(GitCommit) >= 8 {
		Version += "-" + GitCommit[:8]
	}
}

// String returns the version line printed by the daemons.
func String(binary string) string {
	return fmt.Sprintf("%s %s", binary, Version)
}
