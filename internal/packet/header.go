package packet

// Header is one recorded packet. Timestamps are nanoseconds on the recording
// host's clock.
type Header struct {
	Size                uint64   `msgpack:"size" json:"size"`
	GlobalPacketIndex   uint64   `msgpack:"index" json:"index"`
	TracerID            TracerID `msgpack:"tracer" json:"tracer"`
	PacketID            PacketID `msgpack:"id" json:"id"`
	ThreadID            uint32   `msgpack:"thread" json:"thread"`
	GlaveBeginTime      uint64   `msgpack:"glave_begin" json:"glave_begin,omitempty"`
	EntrypointBeginTime uint64   `msgpack:"entry_begin" json:"entry_begin,omitempty"`
	EntrypointEndTime   uint64   `msgpack:"entry_end" json:"entry_end,omitempty"`
	GlaveEndTime        uint64   `msgpack:"glave_end" json:"glave_end,omitempty"`
	Body                []byte   `msgpack:"body" json:"body,omitempty"`
}

// EntrypointDuration returns the time spent inside the traced call.
func (h *Header) EntrypointDuration() uint64 {
	if h == nil || h.EntrypointEndTime < h.EntrypointBeginTime {
		return 0
	}
	return h.EntrypointEndTime - h.EntrypointBeginTime
}

// FileHeader lists the tracers that contributed packets to a recording, in the
// order they were registered.
type FileHeader struct {
	Version   uint16     `msgpack:"version" json:"version"`
	TracerIDs []TracerID `msgpack:"tracers" json:"tracers"`
}

// TracerCount returns the number of tracers listed in the header.
func (h FileHeader) TracerCount() int {
	return len(h.TracerIDs)
}

// FileInfo is a loaded recording: its header and the ordered packet index.
type FileInfo struct {
	Path    string
	Header  FileHeader
	Packets []*Header
}

// PacketCount returns the number of packets in the recording.
func (f *FileInfo) PacketCount() int {
	if f == nil {
		return 0
	}
	return len(f.Packets)
}
