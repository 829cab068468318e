package tracefile

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"

	"tracereplay/internal/packet"
)

// document is the msgpack container layout. Bump containerVersion when it
// changes.
type document struct {
	Schema  uint16           `msgpack:"schema"`
	Version uint16           `msgpack:"version"`
	Tracers []uint16         `msgpack:"tracers"`
	Packets []*packet.Header `msgpack:"packets"`
}

func writeMsgpack(w io.Writer, info *packet.FileInfo) error {
	doc := document{
		Schema:  containerVersion,
		Version: info.Header.Version,
		Tracers: tracersToWire(info.Header.TracerIDs),
		Packets: info.Packets,
	}
	if err := msgpack.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("encode msgpack container: %w", err)
	}
	return nil
}

func readMsgpack(r io.Reader, info *packet.FileInfo) error {
	var doc document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return &DecodeError{Err: err}
	}
	if doc.Schema != containerVersion {
		return &DecodeError{Err: fmt.Errorf("%w %d", ErrVersion, doc.Schema)}
	}
	ids, err := tracersFromWire(doc.Tracers)
	if err != nil {
		return &DecodeError{Err: err}
	}
	info.Header = packet.FileHeader{Version: doc.Version, TracerIDs: ids}
	info.Packets = doc.Packets
	return nil
}

func writeSnappy(w io.Writer, info *packet.FileInfo) error {
	sw := snappy.NewBufferedWriter(w)
	if err := writeMsgpack(sw, info); err != nil {
		_ = sw.Close()
		return err
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("flush snappy stream: %w", err)
	}
	return nil
}

func readSnappy(r io.Reader, info *packet.FileInfo) error {
	return readMsgpack(snappy.NewReader(r), info)
}
