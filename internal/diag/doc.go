// Package diag defines the diagnostic model shared by the replay engine and its hosts.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for everything the engine wants
//     an observer to see: load failures, per-packet warnings and errors, and
//     messages that were recorded into the trace itself.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or presentation.
//
// # Scope
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt; the engine only classifies severity.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Location – the trace file and, for per-packet findings, the packet's
//     global index, packet id and tracer id.
//   - Notes – optional secondary messages.
//
// # Emitting diagnostics
//
// Producers hold a Reporter. ReportError / ReportWarning / ReportInfo return a
// ReportBuilder that can attach notes before Emit. BagReporter collects into a
// Bag, MultiReporter fans out, ReporterFunc hands each diagnostic to a
// function.
package diag
