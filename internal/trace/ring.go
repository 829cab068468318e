package trace

import (
	"fmt"
	"io"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events in memory. It is dumped when a
// replay panics, so at LevelError it still keeps session and phase events.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	total  uint64 // events ever stored; total%len(events) is the next slot
	level  Level
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{events: make([]Event, size), level: level}
}

func (t *RingTracer) keeps(ev *Event) bool {
	if ev.Kind == KindHeartbeat || t.level.ShouldEmit(ev.Scope) {
		return true
	}
	return t.level == LevelError && ev.Scope <= ScopePhase
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.keeps(ev) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.events[t.total%uint64(len(t.events))] = stored
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint64(len(t.events))
	n := min(t.total, size)
	out := make([]Event, 0, n)
	for i := t.total - n; i < t.total; i++ {
		out = append(out, t.events[i%size])
	}
	return out
}

// Dump writes the kept events as text, preceded by a line saying how many
// earlier events were overwritten.
func (t *RingTracer) Dump(w io.Writer) error {
	events := t.Snapshot()
	t.mu.Lock()
	dropped := t.total - uint64(len(events))
	t.mu.Unlock()

	if dropped > 0 {
		if _, err := fmt.Fprintf(w, "(%d earlier events overwritten)\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(formatText(&events[i])); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
