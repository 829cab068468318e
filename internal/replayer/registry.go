package replayer

import (
	"fmt"

	"tracereplay/internal/packet"
)

// Info describes one tracer id.
type Info struct {
	ID            packet.TracerID
	NeedsReplayer bool
	Name          string
}

// Registry is the static tracer table. Entry i must describe tracer id i.
type Registry struct {
	entries [packet.MaxTracerID]Info
}

// ConsistencyError reports a registry entry that does not describe the id it is
// stored under. It is raised with panic: a misconfigured table would route
// packets to the wrong backend.
type ConsistencyError struct {
	Requested packet.TracerID
	Found     packet.TracerID
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("replayer info for tracer id %d failed consistency check (entry claims %d)", e.Requested, e.Found)
}

// DefaultRegistry returns the table shipped with the tool. Slots without a
// tracer are reserved entries.
func DefaultRegistry() *Registry {
	r := &Registry{}
	r.entries[packet.TracerReserved] = Info{ID: packet.TracerReserved, Name: "reserved"}
	r.entries[packet.TracerGLFPS] = Info{ID: packet.TracerGLFPS, Name: "gl-fps"}
	r.entries[packet.TracerMantle] = Info{ID: packet.TracerMantle, NeedsReplayer: true, Name: "mantle"}
	r.entries[packet.TracerXGL] = Info{ID: packet.TracerXGL, NeedsReplayer: true, Name: "xgl"}
	r.entries[packet.TracerMantlePerf] = Info{ID: packet.TracerMantlePerf, Name: "mantle-perf"}
	for id := packet.TracerMantlePerf + 1; id < packet.MaxTracerID; id++ {
		r.entries[id] = Info{ID: id, Name: id.String()}
	}
	return r
}

// Set overwrites slot id. It does not validate info.ID so tests can build a
// broken table.
func (r *Registry) Set(id packet.TracerID, info Info) {
	if id < packet.MaxTracerID {
		r.entries[id] = info
	}
}

// Lookup returns the entry for id. It panics with *ConsistencyError when the
// entry claims a different id, and returns a reserved Info for ids outside
// the table.
func (r *Registry) Lookup(id packet.TracerID) Info {
	if id >= packet.MaxTracerID {
		return Info{ID: packet.TracerReserved}
	}
	info := r.entries[id]
	if info.ID != id {
		panic(&ConsistencyError{Requested: id, Found: info.ID})
	}
	return info
}

// NeedsReplayer reports whether packets of id must be replayed.
func (r *Registry) NeedsReplayer(id packet.TracerID) bool {
	return r.Lookup(id).NeedsReplayer
}
