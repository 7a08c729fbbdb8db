// Package version provides build information for nesemu.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"
)

const unknown = "unknown"

// Set at build time with -ldflags "-X nesemu/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = unknown
	BuildTime = unknown
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	CGOEnabled bool   `json:"cgo_enabled"`
	Modified   bool   `json:"modified"`
}

// GetBuildInfo returns build information, falling back to the VCS stamp
// embedded by the go tool for anything not set by ldflags.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == unknown {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == unknown {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		case "CGO_ENABLED":
			info.CGOEnabled = setting.Value == "1"
		}
	}
	return info
}

// GetVersion returns a short version string such as "v1.2.0" or
// "dev-1a2b3c4".
func GetVersion() string {
	info := GetBuildInfo()
	if info.Version != "dev" || info.GitCommit == unknown {
		return info.Version
	}
	commit := info.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	v := "dev-" + commit
	if info.Modified {
		v += "+dirty"
	}
	return v
}

// Print writes the build information to w, one field per line.
func Print(w io.Writer) {
	info := GetBuildInfo()
	var b strings.Builder
	fmt.Fprintf(&b, "nesemu %s\n", GetVersion())
	fmt.Fprintf(&b, "Git Commit:  %s\n", info.GitCommit)
	fmt.Fprintf(&b, "Build Time:  %s\n", info.BuildTime)
	fmt.Fprintf(&b, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(&b, "Platform:    %s\n", info.Platform)
	fmt.Fprintf(&b, "CGO Enabled: %t\n", info.CGOEnabled)
	io.WriteString(w, b.String())
}
