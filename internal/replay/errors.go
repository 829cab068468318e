package replay

import "errors"

var (
	// ErrNoAPI means the trace header lists no tracer that needs a replayer.
	ErrNoAPI = errors.New("no API specified in trace file for replaying")
	// ErrInitialize means a created backend failed to initialize.
	ErrInitialize = errors.New("replayer failed to initialize")
	// ErrMissingBackends means at least one required backend could not be created.
	ErrMissingBackends = errors.New("failed to load necessary replayers")
)
