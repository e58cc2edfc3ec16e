package app

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit and BuildTime are set with ldflags:
//
//	go build -ldflags "-X github.com/heartmarshall/vocabexport/internal/app.Version=1.0.0"
//
// Without ldflags, Commit and BuildTime come from the VCS stamp embedded by
// the Go toolchain.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns the version string shown in startup logs and /health.
func BuildVersion() string {
	info, _ := debug.ReadBuildInfo()
	return formatVersion(Version, Commit, BuildTime, info)
}

func formatVersion(version, commit, built string, info *debug.BuildInfo) string {
	if info != nil {
		var rev, vcsTime string
		dirty := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.time":
				vcsTime = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if commit == "unknown" && rev != "" {
			commit = shortRevision(rev)
			if dirty {
				commit += "-dirty"
			}
		}
		if built == "unknown" && vcsTime != "" {
			built = vcsTime
		}
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
