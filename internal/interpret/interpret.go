package interpret

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"tracereplay/internal/packet"
)

// Packet is an API-call packet viewed through its family's call table.
type Packet struct {
	Header  *packet.Header
	Family  packet.TracerID
	Name    string
	Args    map[string]any
	ArgsErr error // set when the body could not be decoded
}

// Interpreter reinterprets raw headers for one API family.
type Interpreter interface {
	Family() packet.TracerID
	// Interpret returns nil, false when h is not an API call known to the family.
	Interpret(h *packet.Header) (*Packet, bool)
}

// Table is an Interpreter backed by an ordered list of entrypoint names.
type Table struct {
	family packet.TracerID
	names  []string
	ids    map[string]packet.PacketID
}

// NewTable builds a call table; names[i] is recorded as PacketBeginAPIHere+i.
func NewTable(family packet.TracerID, names []string) *Table {
	t := &Table{
		family: family,
		names:  names,
		ids:    make(map[string]packet.PacketID, len(names)),
	}
	for i, name := range names {
		t.ids[name] = packet.PacketBeginAPIHere + packet.PacketID(i)
	}
	return t
}

func (t *Table) Family() packet.TracerID { return t.family }

// Len returns the number of entrypoints in the table.
func (t *Table) Len() int { return len(t.names) }

// Name returns the entrypoint recorded under id.
func (t *Table) Name(id packet.PacketID) (string, bool) {
	if !id.IsAPICall() {
		return "", false
	}
	idx := int(id - packet.PacketBeginAPIHere)
	if idx >= len(t.names) {
		return "", false
	}
	return t.names[idx], true
}

// ID returns the packet id recorded for an entrypoint name.
func (t *Table) ID(name string) (packet.PacketID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

func (t *Table) Interpret(h *packet.Header) (*Packet, bool) {
	if h == nil {
		return nil, false
	}
	name, ok := t.Name(h.PacketID)
	if !ok {
		return nil, false
	}
	p := &Packet{Header: h, Family: t.family, Name: name}
	p.Args, p.ArgsErr = DecodeArgs(h.Body)
	return p, true
}

// DecodeArgs decodes a packet body into a parameter map. An empty body has
// no arguments.
func DecodeArgs(body []byte) (map[string]any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var args map[string]any
	if err := msgpack.Unmarshal(body, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}

// EncodeArgs encodes a parameter map as a packet body.
func EncodeArgs(args map[string]any) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	data, err := msgpack.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	return data, nil
}

// CallIDs returns the packet id each shipped family records name under.
// Families without the entrypoint are left out.
func CallIDs(name string) map[packet.TracerID]packet.PacketID {
	ids := make(map[packet.TracerID]packet.PacketID)
	for _, t := range []*Table{XGL, Mantle} {
		if id, ok := t.ID(name); ok {
			ids[t.family] = id
		}
	}
	return ids
}

// ForTracer returns the interpreter shipped for a tracer family.
func ForTracer(id packet.TracerID) (Interpreter, bool) {
	switch id {
	case packet.TracerXGL:
		return XGL, true
	case packet.TracerMantle:
		return Mantle, true
	default:
		return nil, false
	}
}
