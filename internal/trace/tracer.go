package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives engine events. Implementations must be goroutine-safe:
// parallel replay sessions share one tracer.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Enabled() bool
	// Close flushes buffered events and releases the output.
	Close() error
}

// Mode selects where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // written as they happen
	ModeRing                   // last N kept in memory for panic dumps
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode accepts the --trace-mode values.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeStream, ModeRing, ModeBoth} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes the tracer built by Open.
type Config struct {
	Level    Level
	Mode     Mode
	Path     string    // stream destination; "" or "-" is stderr
	Writer   io.Writer // overrides Path when set; not closed by the tracer
	RingSize int       // 0 means 4096
}

// Open builds the tracer described by cfg. LevelOff yields Nop.
func Open(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode < ModeStream || cfg.Mode > ModeBoth {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	var sinks []Tracer
	if cfg.Mode != ModeStream {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if cfg.Mode != ModeRing {
		stream, err := openStream(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, stream)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewTee(cfg.Level, sinks...), nil
}

func openStream(cfg Config) (*StreamTracer, error) {
	format := FormatFor(cfg.Path)
	switch {
	case cfg.Writer != nil:
		return NewStreamTracer(cfg.Writer, cfg.Level, format), nil
	case cfg.Path == "" || cfg.Path == "-":
		return NewStreamTracer(os.Stderr, cfg.Level, format), nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	st := NewStreamTracer(f, cfg.Level, format)
	st.closer = f
	return st, nil
}
