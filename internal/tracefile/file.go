package tracefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"

	"tracereplay/internal/packet"
)

// containerVersion is written into every container header.
const containerVersion = 1

// maxRecordSize bounds one NDJSON line.
const maxRecordSize = 16 << 20

// ErrVersion is wrapped when a container declares an unsupported version.
var ErrVersion = errors.New("unsupported container version")

// DecodeError reports a malformed container. Line is 0 for binary formats.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Read decodes a container in format f.
func Read(r io.Reader, f Format) (*packet.FileInfo, error) {
	info := &packet.FileInfo{}
	var err error
	switch f {
	case FormatNDJSON:
		err = readNDJSON(r, info)
	case FormatMsgpack:
		err = readMsgpack(r, info)
	case FormatSnappy:
		err = readSnappy(r, info)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}
	if err := fillSizes(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Write encodes info in format f.
func Write(w io.Writer, f Format, info *packet.FileInfo) error {
	if info == nil {
		return fmt.Errorf("nil trace file")
	}
	switch f {
	case FormatNDJSON:
		return writeNDJSON(w, info)
	case FormatMsgpack:
		return writeMsgpack(w, info)
	case FormatSnappy:
		return writeSnappy(w, info)
	default:
		return ErrUnknownFormat
	}
}

// ReadFile opens path and decodes it by extension.
func ReadFile(path string) (*packet.FileInfo, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer fh.Close()

	info, err := Read(bufio.NewReader(fh), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// WriteFile encodes info by path's extension.
func WriteFile(path string, info *packet.FileInfo) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	return WriteFileAs(path, f, info)
}

// WriteFileAs encodes info as f whatever path's extension. The file is
// written to a temporary sibling and renamed into place.
func WriteFileAs(path string, f Format, info *packet.FileInfo) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tracefile-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = Write(bw, f, info); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// fillSizes sets Size on packets recorded without one to the body length.
func fillSizes(info *packet.FileInfo) error {
	for i, h := range info.Packets {
		if h == nil {
			return &DecodeError{Err: fmt.Errorf("packet %d is empty", i)}
		}
		if h.Size != 0 {
			continue
		}
		n, err := safecast.Conv[uint64](len(h.Body))
		if err != nil {
			return fmt.Errorf("packet %d size: %w", i, err)
		}
		h.Size = n
	}
	return nil
}

func tracersToWire(ids []packet.TracerID) []uint16 {
	out := make([]uint16, len(ids))
	for i, id := range ids {
		out[i] = uint16(id)
	}
	return out
}

func tracersFromWire(raw []uint16) ([]packet.TracerID, error) {
	out := make([]packet.TracerID, len(raw))
	for i, v := range raw {
		id, err := safecast.Conv[uint8](v)
		if err != nil {
			return nil, fmt.Errorf("tracer id %d: %w", v, err)
		}
		out[i] = packet.TracerID(id)
	}
	return out, nil
}
