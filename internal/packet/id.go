package packet

import "fmt"

// PacketID discriminates control packets from API calls and, for API calls,
// identifies the recorded entrypoint.
type PacketID uint16

const (
	PacketMessage PacketID = iota
	PacketMarkerCheckpoint
	PacketMarkerAPIBoundary
	PacketMarkerAPIGroupBegin
	PacketMarkerAPIGroupEnd
	PacketMarkerTerminateProcess

	// Ids between the last control kind and PacketBeginAPIHere are reserved
	// for future markers and are malformed in a recording.

	// PacketBeginAPIHere is the first id assigned to API calls.
	PacketBeginAPIHere PacketID = 10
)

// IsControl reports whether id is one of the fixed control kinds.
func (id PacketID) IsControl() bool {
	return id <= PacketMarkerTerminateProcess
}

// IsAPICall reports whether id is at or above the API-call threshold.
func (id PacketID) IsAPICall() bool {
	return id >= PacketBeginAPIHere
}

func (id PacketID) String() string {
	switch id {
	case PacketMessage:
		return "message"
	case PacketMarkerCheckpoint:
		return "checkpoint"
	case PacketMarkerAPIBoundary:
		return "api-boundary"
	case PacketMarkerAPIGroupBegin:
		return "group-begin"
	case PacketMarkerAPIGroupEnd:
		return "group-end"
	case PacketMarkerTerminateProcess:
		return "terminate-process"
	}
	if id.IsAPICall() {
		return fmt.Sprintf("api(%d)", uint16(id))
	}
	return fmt.Sprintf("reserved(%d)", uint16(id))
}
