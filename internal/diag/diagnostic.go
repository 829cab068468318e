package diag

import (
	"fmt"

	"tracereplay/internal/packet"
)

// Location points at a trace file and, optionally, one packet inside it.
type Location struct {
	File      string
	HasPacket bool
	Index     uint64 // global packet index
	PacketID  packet.PacketID
	TracerID  packet.TracerID
}

// At returns the location of a recorded packet.
func At(file string, h *packet.Header) Location {
	if h == nil {
		return Location{File: file}
	}
	return Location{
		File:      file,
		HasPacket: true,
		Index:     h.GlobalPacketIndex,
		PacketID:  h.PacketID,
		TracerID:  h.TracerID,
	}
}

// InFile returns a location that names only the trace file.
func InFile(file string) Location {
	return Location{File: file}
}

func (l Location) String() string {
	switch {
	case l.HasPacket && l.File != "":
		return fmt.Sprintf("%s#%d", l.File, l.Index)
	case l.HasPacket:
		return fmt.Sprintf("#%d", l.Index)
	default:
		return l.File
	}
}

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location Location
	Notes    []Note
}

func New(sev Severity, code Code, loc Location, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Location: loc,
		Message:  msg,
	}
}

func (d *Diagnostic) WithNote(msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
