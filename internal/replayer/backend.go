package replayer

import (
	"fmt"

	"tracereplay/internal/packet"
)

// Result is the outcome of replaying one API-call packet.
type Result uint8

const (
	ResultSuccess Result = iota
	ResultInvalidID
	ResultCallFailed
	ResultInvalidParams
	ResultValidationError
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultInvalidID:
		return "invalid-id"
	case ResultCallFailed:
		return "call-failed"
	case ResultInvalidParams:
		return "invalid-params"
	case ResultValidationError:
		return "validation-error"
	case ResultError:
		return "error"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// OK reports whether r is ResultSuccess.
func (r Result) OK() bool { return r == ResultSuccess }

// ErrorCode is returned by Initialize; zero means success.
type ErrorCode int

const ErrorNone ErrorCode = 0

// Backend replays API-call packets of one tracer family.
//
// Replay is only called after Initialize returned ErrorNone and never after
// Deinitialize. The surface is shared with other backends and must not be
// taken over.
type Backend interface {
	Initialize(surface packet.Surface, debugLevel int) ErrorCode
	Replay(h *packet.Header) Result
	Deinitialize()
}

// Constructor creates a fresh, uninitialized backend.
type Constructor func() (Backend, error)
