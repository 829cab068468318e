package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the tracereplay CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Info is the machine-readable version payload.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Current returns the build's version info.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// Colored renders Version with each semantic component in its own color.
// Versions that do not look like major.minor.patch are returned unchanged.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}
