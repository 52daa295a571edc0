package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X surfaceflow/internal/version.Version=...".
var (
	Version    = "1.0.0"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("surfaceflow %s (commit %s, built %s, %s %s)", i.Version, i.CommitHash, i.BuildTime, i.GoVersion, i.Platform)
}
