package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Backend loading
	LoadInfo                 Code = 1000
	LoadConsistency          Code = 1001
	LoadNoImplementation     Code = 1002
	LoadInitializeFailed     Code = 1003
	LoadNoAPI                Code = 1004
	LoadReplayersUnavailable Code = 1005

	// Packet dispatch
	PlayInfo          Code = 2000
	PlayInvalidTracer Code = 2001
	PlayNoBackend     Code = 2002
	PlayMalformed     Code = 2003
	PlayReplayFailed  Code = 2004
	PlayTraceMessage  Code = 2005
	PlayNotLoaded     Code = 2006
	PlayCancelled     Code = 2007
	PlayUnloadFailed  Code = 2008

	// Interpretation
	InterpInfo          Code = 3000
	InterpUnknownPacket Code = 3001
	InterpBadArguments  Code = 3002

	// IO
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	LoadInfo:                 "Backend loading",
	LoadConsistency:          "Replayer registry consistency check failed",
	LoadNoImplementation:     "No replayer implementation for tracer",
	LoadInitializeFailed:     "Replayer failed to initialize",
	LoadNoAPI:                "No API specified in trace file",
	LoadReplayersUnavailable: "Failed to load necessary replayers",
	PlayInfo:                 "Packet dispatch",
	PlayInvalidTracer:        "Invalid tracer id for packet",
	PlayNoBackend:            "No active backend for tracer id",
	PlayMalformed:            "Malformed packet",
	PlayReplayFailed:         "Failed to replay packet",
	PlayTraceMessage:         "Message recorded in trace",
	PlayNotLoaded:            "Trace file is not loaded",
	PlayCancelled:            "Replay cancelled",
	PlayUnloadFailed:         "Replayer failed to release its resources",
	InterpInfo:               "Packet interpretation",
	InterpUnknownPacket:      "Unrecognized packet id",
	InterpBadArguments:       "Malformed packet arguments",
	IOInfo:                   "Trace file IO",
	IOLoadFileError:          "Failed to load trace file",
	IODecodeError:            "Failed to decode trace file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LDR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PLY%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("INT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
