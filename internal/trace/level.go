package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota // no tracing
	LevelError               // only dumped on crashes
	LevelPhase               // session + load/play/unload boundaries
	LevelDetail              // per-backend events
	LevelDebug               // everything including per-packet dispatch
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return false // error events are only dumped from the ring
	case LevelPhase:
		return scope <= ScopePhase
	case LevelDetail:
		return scope <= ScopeBackend
	case LevelDebug:
		return true
	}
	return false
}
