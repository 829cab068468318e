// Package trace provides the tracing subsystem of the replay engine.
//
// Tracing records what the engine itself is doing (loading backends, walking
// packets, tearing down) so that hangs inside a backend and slow replays can be
// diagnosed. It is separate from the diagnostics an observer receives.
//
// # Usage
//
//	tracereplay replay --trace=- --trace-level=phase capture.trace
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: buffered text or NDJSON output (file/stderr)
//   - RingTracer: last N events, dumped when something panics
//   - Tee: stream and ring together (--trace-mode both)
//
// # Scopes
//
//   - ScopeSession: one loaded trace file
//   - ScopePhase: load, play, unload
//   - ScopeBackend: per-backend initialize/deinitialize
//   - ScopePacket: per-packet dispatch (debug level only)
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "play", parentID)
//	defer span.End("")
package trace
