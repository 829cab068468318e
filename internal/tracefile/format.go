package tracefile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a container encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatNDJSON
	FormatMsgpack
	FormatSnappy
)

// ErrUnknownFormat is returned when a path has no recognized extension.
var ErrUnknownFormat = errors.New("unknown trace container format")

func (f Format) String() string {
	switch f {
	case FormatNDJSON:
		return "ndjson"
	case FormatMsgpack:
		return "msgpack"
	case FormatSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name as accepted by --format flags.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "snappy", "sz":
		return FormatSnappy, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q (expected: ndjson|msgpack|snappy)", ErrUnknownFormat, s)
	}
}

// FormatFor picks the format from path's extension.
func FormatFor(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".trace.sz"), strings.HasSuffix(base, ".sz"):
		return FormatSnappy, nil
	case strings.HasSuffix(base, ".ndjson"), strings.HasSuffix(base, ".jsonl"):
		return FormatNDJSON, nil
	case strings.HasSuffix(base, ".trace"), strings.HasSuffix(base, ".mp"):
		return FormatMsgpack, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
