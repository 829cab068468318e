package packet

import "fmt"

// TracerID names the API family a packet or backend belongs to.
type TracerID uint8

const (
	// TracerReserved means "no tracer" and never maps to an active backend.
	TracerReserved TracerID = iota
	TracerGLFPS             // frame-rate meta source, nothing to replay
	TracerMantle
	TracerXGL
	TracerMantlePerf // perf counters, nothing to replay

	// MaxTracerID is the size of every table indexed by TracerID.
	MaxTracerID = 14
)

// Valid reports whether id can index a backend table and is not reserved.
func (id TracerID) Valid() bool {
	return id != TracerReserved && id < MaxTracerID
}

func (id TracerID) String() string {
	switch id {
	case TracerReserved:
		return "reserved"
	case TracerGLFPS:
		return "gl-fps"
	case TracerMantle:
		return "mantle"
	case TracerXGL:
		return "xgl"
	case TracerMantlePerf:
		return "mantle-perf"
	default:
		return fmt.Sprintf("tracer(%d)", uint8(id))
	}
}

// ParseTracerID resolves a tracer name as printed by String.
func ParseTracerID(s string) (TracerID, error) {
	for id := TracerReserved; id < MaxTracerID; id++ {
		if id.String() == s {
			return id, nil
		}
	}
	return TracerReserved, fmt.Errorf("unknown tracer %q", s)
}
