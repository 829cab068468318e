// Package calllog implements a replay backend that validates API-call packets
// against their family's call table and appends each replayed call to an
// NDJSON call log.
package calllog

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"tracereplay/internal/interpret"
	"tracereplay/internal/packet"
	"tracereplay/internal/replayer"
)

const logVersion = 1

// Initialize error codes.
const (
	ErrNoSurface replayer.ErrorCode = iota + 1
	ErrWriteHeader
)

// LogHeader is the first line of a call log.
type LogHeader struct {
	Kind       string `json:"kind"`
	V          int    `json:"v"`
	Family     string `json:"family"`
	Width      uint32 `json:"width"`
	Height     uint32 `json:"height"`
	DebugLevel int    `json:"debug_level"`
}

// LogCall is one replayed call.
type LogCall struct {
	Kind     string         `json:"kind"`
	Index    uint64         `json:"index"`
	Name     string         `json:"name"`
	Thread   uint32         `json:"thread,omitempty"`
	Duration uint64         `json:"duration_ns,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
}

// LogEnd closes a call log.
type LogEnd struct {
	Kind  string `json:"kind"`
	Calls int    `json:"calls"`
}

// Backend replays by logging. It is not safe for concurrent Replay calls;
// the dispatcher never makes them.
type Backend struct {
	mu          sync.Mutex
	table       interpret.Interpreter
	w           io.Writer
	enc         *json.Encoder
	err         error
	initialized bool
	calls       int
}

// New returns a backend for the family of table writing to w. A nil w
// discards the log but still validates packets.
func New(table interpret.Interpreter, w io.Writer) *Backend {
	if w == nil {
		w = io.Discard
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Backend{table: table, w: w, enc: enc}
}

// Constructor adapts New to replayer.Constructor. open is called once per
// created backend.
func Constructor(table interpret.Interpreter, open func() (io.Writer, error)) replayer.Constructor {
	return func() (replayer.Backend, error) {
		var w io.Writer
		if open != nil {
			var err error
			if w, err = open(); err != nil {
				return nil, fmt.Errorf("open call log: %w", err)
			}
		}
		return New(table, w), nil
	}
}

func (b *Backend) Initialize(surface packet.Surface, debugLevel int) replayer.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if surface.Width == 0 || surface.Height == 0 {
		return ErrNoSurface
	}
	b.recordLocked(LogHeader{
		Kind:       "header",
		V:          logVersion,
		Family:     b.table.Family().String(),
		Width:      surface.Width,
		Height:     surface.Height,
		DebugLevel: debugLevel,
	})
	if b.err != nil {
		return ErrWriteHeader
	}
	b.initialized = true
	return replayer.ErrorNone
}

func (b *Backend) Replay(h *packet.Header) replayer.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return replayer.ResultError
	}
	p, ok := b.table.Interpret(h)
	if !ok {
		return replayer.ResultInvalidID
	}
	if p.ArgsErr != nil {
		return replayer.ResultInvalidParams
	}
	b.recordLocked(LogCall{
		Kind:     "call",
		Index:    h.GlobalPacketIndex,
		Name:     p.Name,
		Thread:   h.ThreadID,
		Duration: h.EntrypointDuration(),
		Args:     p.Args,
	})
	if b.err != nil {
		return replayer.ResultError
	}
	b.calls++
	return replayer.ResultSuccess
}

func (b *Backend) Deinitialize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	b.recordLocked(LogEnd{Kind: "end", Calls: b.calls})
	b.initialized = false
}

// Close closes the log writer when it is an io.Closer. Factory.Destroy calls it.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Err returns the first write error.
func (b *Backend) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Calls returns the number of successfully replayed calls.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *Backend) recordLocked(v any) {
	if b.enc == nil || b.err != nil {
		return
	}
	if err := b.enc.Encode(v); err != nil {
		b.err = err
	}
}
