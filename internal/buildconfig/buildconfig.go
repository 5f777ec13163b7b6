package buildconfig

import (
	"runtime"
	"runtime/debug"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/storybible/internal/buildconfig.version=v1.2.0
var (
	version = "dev"
	commit  = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

func Version() string {
	return version
}

// Commit returns the ldflags commit, falling back to the VCS revision the
// toolchain stamped into the binary.
func Commit() string {
	if commit != "unknown" {
		return commit
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return commit
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return commit
}

func VersionInfo() Info {
	return Info{
		Version:   Version(),
		Commit:    Commit(),
		GoVersion: runtime.Version(),
	}
}
