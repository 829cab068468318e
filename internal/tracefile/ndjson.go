package tracefile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"tracereplay/internal/packet"
)

// ndjsonHeader is the first record of an NDJSON container.
type ndjsonHeader struct {
	Kind    string   `json:"kind"`
	V       int      `json:"v"`
	Version uint16   `json:"version"`
	Tracers []uint16 `json:"tracers"`
}

type ndjsonPacket struct {
	Kind string `json:"kind"`
	*packet.Header
}

type ndjsonRecord struct {
	Kind  string  `json:"kind"`
	Index *uint64 `json:"index"`
}

// NDJSONWriter streams a container one record per line.
type NDJSONWriter struct {
	enc     *json.Encoder
	err     error
	packets int
}

// NewNDJSONWriter writes the header record immediately.
func NewNDJSONWriter(w io.Writer, header packet.FileHeader) *NDJSONWriter {
	nw := &NDJSONWriter{enc: json.NewEncoder(w)}
	nw.enc.SetEscapeHTML(false)
	nw.record(ndjsonHeader{
		Kind:    "header",
		V:       containerVersion,
		Version: header.Version,
		Tracers: tracersToWire(header.TracerIDs),
	})
	return nw
}

// WritePacket appends one packet.
func (w *NDJSONWriter) WritePacket(h *packet.Header) error {
	if h == nil {
		return nil
	}
	w.record(ndjsonPacket{Kind: "packet", Header: h})
	if w.err == nil {
		w.packets++
	}
	return w.err
}

// Err returns the first write error.
func (w *NDJSONWriter) Err() error { return w.err }

func (w *NDJSONWriter) record(v any) {
	if w.err != nil {
		return
	}
	if err := w.enc.Encode(v); err != nil {
		w.err = fmt.Errorf("write ndjson record: %w", err)
	}
}

func writeNDJSON(w io.Writer, info *packet.FileInfo) error {
	nw := NewNDJSONWriter(w, info.Header)
	for _, h := range info.Packets {
		if err := nw.WritePacket(h); err != nil {
			return err
		}
	}
	return nw.Err()
}

func readNDJSON(r io.Reader, info *packet.FileInfo) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	sawHeader := false
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec ndjsonRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return &DecodeError{Line: line, Err: err}
		}
		switch rec.Kind {
		case "header":
			if sawHeader {
				return &DecodeError{Line: line, Err: fmt.Errorf("duplicate header")}
			}
			var hdr ndjsonHeader
			if err := json.Unmarshal(raw, &hdr); err != nil {
				return &DecodeError{Line: line, Err: err}
			}
			if hdr.V != containerVersion {
				return &DecodeError{Line: line, Err: fmt.Errorf("%w %d", ErrVersion, hdr.V)}
			}
			ids, err := tracersFromWire(hdr.Tracers)
			if err != nil {
				return &DecodeError{Line: line, Err: err}
			}
			info.Header = packet.FileHeader{Version: hdr.Version, TracerIDs: ids}
			sawHeader = true
		case "packet":
			if !sawHeader {
				return &DecodeError{Line: line, Err: fmt.Errorf("packet before header")}
			}
			h := &packet.Header{}
			if err := json.Unmarshal(raw, h); err != nil {
				return &DecodeError{Line: line, Err: err}
			}
			if rec.Index == nil {
				// hand-written traces may omit indices; use the position
				h.GlobalPacketIndex = uint64(len(info.Packets))
			}
			info.Packets = append(info.Packets, h)
		default:
			return &DecodeError{Line: line, Err: fmt.Errorf("unknown record kind %q", rec.Kind)}
		}
	}
	if err := sc.Err(); err != nil {
		return &DecodeError{Line: line + 1, Err: err}
	}
	if !sawHeader {
		return &DecodeError{Err: fmt.Errorf("missing header")}
	}
	return nil
}
