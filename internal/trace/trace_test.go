package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeSession, false},
		{LevelError, ScopeSession, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeBackend, false},
		{LevelDetail, ScopeBackend, true},
		{LevelDetail, ScopePacket, false},
		{LevelDebug, ScopePacket, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopePhase, "play", 0)
	Point(tr, ScopePacket, "packet", "skipped", span.ID(), nil)
	span.WithExtra("packets", "3").End("ok")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "→ play") {
		t.Fatalf("missing begin line:\n%s", out)
	}
	if !strings.Contains(out, "← play (ok) {packets=3}") {
		t.Fatalf("missing end line:\n%s", out)
	}
	if strings.Contains(out, "skipped") {
		t.Fatalf("packet-scope point leaked at phase level:\n%s", out)
	}
}

func TestStreamFlushesOnSessionEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)

	Begin(tr, ScopePhase, "load", 0).End("")
	if buf.Len() != 0 {
		t.Fatalf("phase events should stay buffered, got %q", buf.String())
	}
	Begin(tr, ScopeSession, "replay_run", 0).End("")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines after session end:\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[3]), &ev); err != nil {
		t.Fatalf("bad NDJSON line %q: %v", lines[3], err)
	}
	if ev["name"] != "replay_run" || ev["kind"] != "end" {
		t.Fatalf("unexpected last event %v", ev)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopePacket, Name: name})
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "(1 earlier events overwritten)") {
		t.Fatalf("dump missing overwrite note:\n%s", buf.String())
	}
}

func TestRingKeepsPhasesAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	ring.Emit(&Event{Kind: KindSpanBegin, Scope: ScopePhase, Name: "play"})
	ring.Emit(&Event{Kind: KindPoint, Scope: ScopePacket, Name: "packet"})
	if snap := ring.Snapshot(); len(snap) != 1 || snap[0].Name != "play" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestOpenBothModes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := Open(Config{Level: LevelPhase, Mode: ModeBoth, Writer: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ring := Ring(tr)
	if ring == nil {
		t.Fatal("Ring did not find the ring tracer")
	}
	Begin(tr, ScopeSession, "session", 0).End("")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(ring.Snapshot()) != 2 {
		t.Fatalf("ring holds %d events, want 2", len(ring.Snapshot()))
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("stream wrote:\n%s", buf.String())
	}

	if tr, _ := Open(Config{Level: LevelOff, Mode: ModeBoth}); tr != Nop {
		t.Fatal("LevelOff should give Nop")
	}
	if _, err := Open(Config{Level: LevelPhase}); err == nil {
		t.Fatal("expected error for missing mode")
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"":              FormatText,
		"-":             FormatText,
		"run.log":       FormatText,
		"run.ndjson":    FormatNDJSON,
		"out/RUN.JSONL": FormatNDJSON,
		"trace.json.gz": FormatText,
	}
	for path, want := range cases {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	stop := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	snap := ring.Snapshot()
	if len(snap) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if snap[0].Kind != KindHeartbeat || snap[0].Extra["goroutines"] == "" {
		t.Fatalf("unexpected heartbeat %+v", snap[0])
	}
	n := len(snap)
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatal("heartbeat kept running after stop")
	}

	StartHeartbeat(Nop, time.Millisecond)()
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	span := Begin(ring, ScopePhase, "load", 0)
	if CurrentSpan(WithSpan(ctx, span)) != span.ID() {
		t.Fatal("span id not propagated")
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error")
	}
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(Both) = %v, %v", m, err)
	}
	if _, err := ParseMode("chrome"); err == nil {
		t.Fatal("expected error")
	}
}
