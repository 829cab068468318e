// Package tracefile reads and writes trace containers.
//
// Three encodings share one logical layout (a file header followed by packets
// in recorded order):
//
//	*.ndjson, *.trace.ndjson   one JSON record per line, header first
//	*.trace, *.mp              a single msgpack document
//	*.trace.sz                 the msgpack document, snappy-framed
//
// The replay engine never depends on this package; it consumes the
// packet.FileInfo that Read produces.
package tracefile
