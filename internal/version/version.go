// Package version exposes build information for the /version endpoint.
package version

import "runtime/debug"

// Version is set at build time via -ldflags "-X .../internal/version.Version=v1.2.3".
// Falls back to VCS revision data embedded by the Go toolchain.
var Version = "dev"

// Info describes the running build.
type Info struct {
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Modified bool   `json:"modified,omitempty"`
}

// Get returns the build information for this binary.
func Get() Info {
	info := Info{Version: Version}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}
