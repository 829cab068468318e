package diagfmt

import (
	"path/filepath"

	"tracereplay/internal/diag"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			base = "."
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absBase, absPath); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

func formatLocation(loc diag.Location, mode PathMode, base string) string {
	loc.File = formatPath(loc.File, mode, base)
	return loc.String()
}
