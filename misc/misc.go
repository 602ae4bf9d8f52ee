// Package misc keeps program wide identification details.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const appName = "nlmc"

// version and gitHash could be overwritten at link time.
var (
	version = ""
	gitHash = ""
)

// GetAppName returns name of the program binary without extension, falls
// back to canonical name.
func GetAppName() string {
	if len(os.Args) == 0 {
		return appName
	}
	base := filepath.Base(os.Args[0])
	if strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".test.exe") {
		return appName
	}
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." {
		return name
	}
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns revision program was built from.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
