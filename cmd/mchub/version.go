package main

import (
	"runtime/debug"
)

// set with -ldflags "-X main.gitRevision=... -X main.gitBranch=..."
var (
	gitRevision string
	gitBranch   string
)

func getVersion() string {
	rev := gitRevision
	if rev == "" {
		rev = vcsRevision()
	}

	switch gitBranch {
	case "", "main", "master":
		return rev
	default:
		return gitBranch + ":" + rev
	}
}

// vcsRevision reads the revision the go tool stamped into the binary.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var rev, dirty string

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(len(s.Value), 8)]
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}

	if rev == "" {
		return "dev"
	}

	return rev + dirty
}
