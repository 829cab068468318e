// Package replay drives recorded packet sequences through replayer backends.
//
// A Session owns the table of active backends for one loaded trace file. It
// creates and initializes a backend for every tracer listed in the file
// header that needs one (LoadBackends), walks packets in recorded order routing
// API calls to the backend of their tracer (Play), and tears every backend
// down again (UnloadBackends).
//
// The walk never stops on a single packet: invalid tracer ids, missing
// backends, malformed packet ids and failed replays are reported to the
// session's diag.Reporter and the next packet is processed. Only loading can
// fail as a whole.
//
// Controller is the host-facing wrapper with the four entry points
// LoadTraceFile, PlayTraceFile, UnloadTraceFile and InterpretPacket.
//
// Packets are replayed on the calling goroutine, one at a time. Backends see
// calls in exactly the recorded order and a hung backend call blocks the walk.
package replay
