// Package packet defines the recorded-trace data model consumed by the replay engine.
//
// A trace is an ordered sequence of packets. Every packet carries a Header with
// a PacketID (control kind or API call), the TracerID of the API family that
// produced it and its position in the recording (GlobalPacketIndex).
//
// Control packets (messages and markers) have ids below PacketBeginAPIHere and are
// never forwarded to a replayer backend. API-call packets have ids at or above the
// threshold and are routed by TracerID.
//
// Packages in this module never mutate a FileInfo after it has been loaded; the
// sequence is read-only for the duration of a replay.
package packet
