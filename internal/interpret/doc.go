// Package interpret turns generic packet headers into named, decoded API calls
// for one API family.
//
// API-call ids are dense: the n-th entrypoint of a family is recorded with id
// packet.PacketBeginAPIHere+n. Arguments travel in the packet body as a
// msgpack map keyed by parameter name.
package interpret
