package version

import (
	"log/slog"
	"runtime"
)

// Build information, injected via ldflags at build time:
//
//	-X github.com/bruhmagedon/advanced-jwt-server/internal/platform/version.Version=v1.2.3
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds complete build information
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// LogAttr groups the build information for the startup log line.
func (i Info) LogAttr() slog.Attr {
	return slog.Group("build",
		slog.String("version", i.Version),
		slog.String("commit", i.Commit),
		slog.String("go", i.GoVersion),
	)
}
