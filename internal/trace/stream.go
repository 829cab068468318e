package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events to w as they arrive. Output is buffered and
// flushed whenever a session-scope event is written, so a trace file stays
// readable up to the last finished file when the process is killed.
type StreamTracer struct {
	mu     sync.Mutex
	bw     *bufio.Writer
	closer io.Closer // set when the tracer owns the output
	level  Level
	format Format
	err    error
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{bw: bufio.NewWriter(w), level: level, format: format}
}

// Emit writes ev. The first write error is kept for Close; tracing never
// interrupts a replay.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || (!t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.bw.Write(data); err != nil {
		t.err = err
		return
	}
	if ev.Scope == ScopeSession || ev.Kind == KindHeartbeat {
		t.err = t.bw.Flush()
	}
}

func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = t.bw.Flush()
	}
	if t.closer != nil {
		if err := t.closer.Close(); err != nil && t.err == nil {
			t.err = err
		}
		t.closer = nil
	}
	return t.err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
