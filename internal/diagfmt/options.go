package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths as given.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string // for PathModeRelative; empty means the working directory
	ShowNotes bool
	Max       int // 0 prints everything
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
