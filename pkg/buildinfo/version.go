// Package buildinfo reports which build of reflow is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/reflow/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/reflow/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/reflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go install, go run) fill in whatever the Go toolchain
// recorded: the module version and the VCS revision and time.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fillFrom(bi)
}

// fillFrom replaces unstamped defaults with values from bi.
func fillFrom(bi *debug.BuildInfo) {
	if v := bi.Main.Version; Version == "dev" && v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// String returns version, commit and date on separate lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
