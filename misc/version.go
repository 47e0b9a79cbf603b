// Package misc holds build time information.
package misc

import (
	"path/filepath"
	"strings"
)

// set by linker: -X adaptive/misc.version=... -X adaptive/misc.githash=...
var (
	version = "dev"
	githash = "unknown"
	appname = "adaptive"
)

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}

// GetAppName returns program name without extension, used for log and report
// file names.
func GetAppName() string {
	if len(appname) == 0 {
		return "adaptive"
	}
	return strings.TrimSuffix(filepath.Base(appname), filepath.Ext(appname))
}
