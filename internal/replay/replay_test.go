package replay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tracereplay/internal/diag"
	"tracereplay/internal/interpret"
	"tracereplay/internal/packet"
	"tracereplay/internal/replayer"
)

// fakeBackend records every lifecycle call.
type fakeBackend struct {
	initCode  replayer.ErrorCode
	fail      map[packet.PacketID]replayer.Result
	inits     int
	deinits   int
	closed    int
	replayed  []uint64
	afterDown int
	surface   packet.Surface
	closeErr  error
}

func (f *fakeBackend) Initialize(s packet.Surface, _ int) replayer.ErrorCode {
	f.inits++
	f.surface = s
	return f.initCode
}

func (f *fakeBackend) Replay(h *packet.Header) replayer.Result {
	if f.deinits > 0 || f.inits == 0 {
		f.afterDown++
	}
	f.replayed = append(f.replayed, h.GlobalPacketIndex)
	if res, ok := f.fail[h.PacketID]; ok {
		return res
	}
	return replayer.ResultSuccess
}

func (f *fakeBackend) Deinitialize() { f.deinits++ }

func (f *fakeBackend) Close() error {
	f.closed++
	return f.closeErr
}

func factoryWith(backends map[packet.TracerID]*fakeBackend) *replayer.Factory {
	factory := replayer.NewFactory()
	for id, b := range backends {
		factory.Register(id, func() (replayer.Backend, error) { return b, nil })
	}
	return factory
}

func newTestController(backends map[packet.TracerID]*fakeBackend) (*Controller, *diag.Bag) {
	bag := diag.NewBag(100)
	c := NewController(Options{
		Factory:  factoryWith(backends),
		Reporter: diag.BagReporter{Bag: bag},
	})
	return c, bag
}

func fileInfo(tracers []packet.TracerID, packets ...*packet.Header) *packet.FileInfo {
	for i, h := range packets {
		h.GlobalPacketIndex = uint64(i)
	}
	return &packet.FileInfo{
		Path:    "test.trace",
		Header:  packet.FileHeader{Version: 1, TracerIDs: tracers},
		Packets: packets,
	}
}

func apiCall(tracer packet.TracerID, id packet.PacketID) *packet.Header {
	return &packet.Header{TracerID: tracer, PacketID: id}
}

func messagePacket(t *testing.T, level packet.LogLevel, text string) *packet.Header {
	t.Helper()
	body, err := packet.EncodeMessage(packet.Message{Level: level, Text: text})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	return &packet.Header{TracerID: packet.TracerXGL, PacketID: packet.PacketMessage, Body: body}
}

func bySeverity(bag *diag.Bag, sev diag.Severity) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func TestLoadMissingBackendFails(t *testing.T) {
	c, bag := newTestController(nil)
	info := fileInfo([]packet.TracerID{packet.TracerMantle})

	if c.LoadTraceFile(context.Background(), info, nil) {
		t.Fatal("LoadTraceFile succeeded without a backend")
	}
	errs := bySeverity(bag, diag.SevError)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	if errs[0].Code != diag.LoadNoImplementation || !strings.Contains(errs[0].Message, "tracer id 2") {
		t.Fatalf("unexpected error: %s %q", errs[0].Code, errs[0].Message)
	}
	if c.Loaded() {
		t.Fatal("controller reports loaded after failure")
	}
}

func TestLoadPartialMissingKeepsOthers(t *testing.T) {
	xgl := &fakeBackend{}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	info := fileInfo([]packet.TracerID{packet.TracerMantle, packet.TracerXGL})

	if !c.LoadTraceFile(context.Background(), info, nil) {
		t.Fatal("LoadTraceFile failed with one usable backend")
	}
	if got := bag.Count(diag.SevError); got != 1 {
		t.Fatalf("expected 1 error for the missing mantle backend, got %d", got)
	}
	if xgl.inits != 1 {
		t.Fatalf("xgl initialized %d times", xgl.inits)
	}
	if active := c.Session().Active(); len(active) != 1 || active[0] != packet.TracerXGL {
		t.Fatalf("active = %v", active)
	}
}

func TestLoadNoAPI(t *testing.T) {
	for _, tracers := range [][]packet.TracerID{
		nil,
		{packet.TracerReserved},
		{packet.TracerGLFPS, packet.TracerMantlePerf},
	} {
		s := NewSession(Options{Factory: factoryWith(nil)})
		err := s.LoadBackends(context.Background(), packet.FileHeader{TracerIDs: tracers})
		if !errors.Is(err, ErrNoAPI) {
			t.Errorf("tracers %v: err = %v, want ErrNoAPI", tracers, err)
		}
	}
}

func TestLoadInitFailureTearsDown(t *testing.T) {
	mantle := &fakeBackend{}
	xgl := &fakeBackend{initCode: 7}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{
		packet.TracerMantle: mantle,
		packet.TracerXGL:    xgl,
	})
	info := fileInfo([]packet.TracerID{packet.TracerMantle, packet.TracerXGL})

	if c.LoadTraceFile(context.Background(), info, nil) {
		t.Fatal("LoadTraceFile succeeded despite init failure")
	}
	if mantle.deinits != 1 || mantle.closed != 1 {
		t.Fatalf("mantle not torn down: deinits=%d closed=%d", mantle.deinits, mantle.closed)
	}
	if xgl.deinits != 0 || xgl.closed != 1 {
		t.Fatalf("failed xgl backend: deinits=%d closed=%d", xgl.deinits, xgl.closed)
	}
	if len(c.Session().Active()) != 0 {
		t.Fatalf("backends left active: %v", c.Session().Active())
	}
	errs := bySeverity(bag, diag.SevError)
	if len(errs) != 1 || errs[0].Code != diag.LoadInitializeFailed {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}

func TestLoadUsesDefaultSurface(t *testing.T) {
	xgl := &fakeBackend{}
	s := NewSession(Options{Factory: factoryWith(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})})
	if err := s.LoadBackends(context.Background(), packet.FileHeader{TracerIDs: []packet.TracerID{packet.TracerXGL}}); err != nil {
		t.Fatalf("LoadBackends: %v", err)
	}
	if xgl.surface.Width != 800 || xgl.surface.Height != 600 {
		t.Fatalf("surface = %+v, want 800x600", xgl.surface)
	}
}

func TestRegistryMismatchPanics(t *testing.T) {
	reg := replayer.DefaultRegistry()
	reg.Set(packet.TracerXGL, replayer.Info{ID: packet.TracerMantle, NeedsReplayer: true})
	s := NewSession(Options{Registry: reg, Factory: factoryWith(nil)})

	defer func() {
		r := recover()
		var ce *replayer.ConsistencyError
		err, ok := r.(error)
		if !ok || !errors.As(err, &ce) {
			t.Fatalf("expected *ConsistencyError panic, got %v", r)
		}
		if ce.Requested != packet.TracerXGL || ce.Found != packet.TracerMantle {
			t.Fatalf("unexpected consistency error: %+v", ce)
		}
	}()
	_ = s.LoadBackends(context.Background(), packet.FileHeader{TracerIDs: []packet.TracerID{packet.TracerXGL}})
}

func TestPlayIsolatesFailures(t *testing.T) {
	xgl := &fakeBackend{fail: map[packet.PacketID]replayer.Result{
		packet.PacketBeginAPIHere + 1: replayer.ResultCallFailed,
	}}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	info := fileInfo([]packet.TracerID{packet.TracerXGL},
		messagePacket(t, packet.LogInfo, "frame start"),
		apiCall(packet.TracerXGL, packet.PacketBeginAPIHere),
		apiCall(packet.TracerXGL, packet.PacketBeginAPIHere+1),
		apiCall(packet.TracerXGL, packet.PacketBeginAPIHere+2),
	)
	ctx := context.Background()
	if !c.LoadTraceFile(ctx, info, nil) {
		t.Fatal("LoadTraceFile failed")
	}
	if !c.PlayTraceFile(ctx, info) {
		t.Fatal("PlayTraceFile returned false")
	}

	errs := bySeverity(bag, diag.SevError)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "packet_id 11") || errs[0].Location.Index != 2 {
		t.Fatalf("error does not name the failing packet: %q at %s", errs[0].Message, errs[0].Location)
	}
	if want := []uint64{1, 2, 3}; !equalIndexes(xgl.replayed, want) {
		t.Fatalf("replayed %v, want %v", xgl.replayed, want)
	}

	st := c.Stats()
	if st.Packets != 4 || st.Controls != 1 || st.Replayed != 2 || st.Failed != 1 || st.Skipped != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if st.Clean() {
		t.Fatal("stats report clean replay with a failed call")
	}
}

func TestPlayReservedTracerWarnsOnce(t *testing.T) {
	xgl := &fakeBackend{}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	info := fileInfo([]packet.TracerID{packet.TracerXGL},
		apiCall(packet.TracerReserved, packet.PacketBeginAPIHere),
	)
	ctx := context.Background()
	c.LoadTraceFile(ctx, info, nil)
	c.PlayTraceFile(ctx, info)

	warns := bySeverity(bag, diag.SevWarning)
	if len(warns) != 1 || warns[0].Code != diag.PlayInvalidTracer {
		t.Fatalf("expected one invalid-tracer warning, got %+v", warns)
	}
	if len(xgl.replayed) != 0 {
		t.Fatalf("backend replayed %v", xgl.replayed)
	}
}

func TestPlayClassification(t *testing.T) {
	xgl := &fakeBackend{}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	info := fileInfo([]packet.TracerID{packet.TracerXGL},
		apiCall(packet.MaxTracerID, packet.PacketBeginAPIHere),  // out of range
		apiCall(packet.TracerMantle, packet.PacketBeginAPIHere), // no backend
		apiCall(packet.TracerXGL, 7),                            // malformed
		apiCall(packet.TracerXGL, packet.PacketMarkerCheckpoint),
		apiCall(packet.TracerXGL, packet.PacketMarkerAPIGroupBegin),
		apiCall(packet.TracerXGL, packet.PacketMarkerAPIGroupEnd),
		apiCall(packet.TracerXGL, packet.PacketMarkerTerminateProcess),
		apiCall(packet.TracerXGL, packet.PacketBeginAPIHere+3),
	)
	ctx := context.Background()
	c.LoadTraceFile(ctx, info, nil)
	c.PlayTraceFile(ctx, info)

	codes := map[diag.Code]int{}
	for _, d := range bag.Items() {
		codes[d.Code]++
	}
	if codes[diag.PlayInvalidTracer] != 1 || codes[diag.PlayNoBackend] != 1 || codes[diag.PlayMalformed] != 1 {
		t.Fatalf("diagnostic codes = %v", codes)
	}
	for _, d := range bag.Items() {
		if d.Code == diag.PlayMalformed && d.Message != "bad packet type id=7, index=2" {
			t.Fatalf("malformed message = %q", d.Message)
		}
	}
	if want := []uint64{7}; !equalIndexes(xgl.replayed, want) {
		t.Fatalf("replayed %v, want %v", xgl.replayed, want)
	}
	st := c.Stats()
	if st.Controls != 4 || st.Skipped != 3 || st.Replayed != 1 || st.Groups != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestPlayForwardsMessagesBySeverity(t *testing.T) {
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: {}})
	info := fileInfo([]packet.TracerID{packet.TracerXGL},
		messagePacket(t, packet.LogError, "device lost"),
		messagePacket(t, packet.LogWarning, "slow path"),
		messagePacket(t, packet.LogDebug, "details"),
	)
	ctx := context.Background()
	c.LoadTraceFile(ctx, info, nil)
	c.PlayTraceFile(ctx, info)

	want := []diag.Severity{diag.SevError, diag.SevWarning, diag.SevInfo}
	items := bag.Items()
	if len(items) != len(want) {
		t.Fatalf("got %d diagnostics, want %d", len(items), len(want))
	}
	for i, d := range items {
		if d.Severity != want[i] || d.Code != diag.PlayTraceMessage {
			t.Errorf("item %d: %s %s %q", i, d.Severity, d.Code, d.Message)
		}
	}
	if c.Stats().Messages != 3 {
		t.Fatalf("messages = %d", c.Stats().Messages)
	}
}

func TestUnloadIdempotent(t *testing.T) {
	xgl := &fakeBackend{}
	c, _ := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	ctx := context.Background()
	c.LoadTraceFile(ctx, fileInfo([]packet.TracerID{packet.TracerXGL}), nil)

	c.UnloadTraceFile(ctx)
	c.UnloadTraceFile(ctx)
	if xgl.deinits != 1 || xgl.closed != 1 {
		t.Fatalf("deinits=%d closed=%d, want 1/1", xgl.deinits, xgl.closed)
	}
	if c.Session().Backend(packet.TracerXGL) != nil {
		t.Fatal("backend handle not cleared")
	}
}

func TestReloadTearsDownPrevious(t *testing.T) {
	first := &fakeBackend{}
	second := &fakeBackend{}
	n := 0
	factory := replayer.NewFactory()
	factory.Register(packet.TracerXGL, func() (replayer.Backend, error) {
		n++
		if n == 1 {
			return first, nil
		}
		return second, nil
	})
	c := NewController(Options{Factory: factory})
	ctx := context.Background()
	info := fileInfo([]packet.TracerID{packet.TracerXGL}, apiCall(packet.TracerXGL, packet.PacketBeginAPIHere))

	c.LoadTraceFile(ctx, info, nil)
	c.LoadTraceFile(ctx, info, nil)
	if first.deinits != 1 {
		t.Fatalf("first backend deinits = %d", first.deinits)
	}
	c.PlayTraceFile(ctx, info)
	if len(first.replayed) != 0 || len(second.replayed) != 1 {
		t.Fatalf("replayed first=%v second=%v", first.replayed, second.replayed)
	}
	if first.afterDown != 0 || second.afterDown != 0 {
		t.Fatal("backend replayed outside its initialized lifetime")
	}
}

func TestBatches(t *testing.T) {
	mk := func(ids ...packet.PacketID) []*packet.Header {
		out := make([]*packet.Header, len(ids))
		for i, id := range ids {
			out[i] = &packet.Header{PacketID: id, GlobalPacketIndex: uint64(i)}
		}
		return out
	}
	end := packet.PacketMarkerAPIGroupEnd
	api := packet.PacketBeginAPIHere

	tests := []struct {
		name  string
		in    []*packet.Header
		sizes []int
	}{
		{"empty", nil, nil},
		{"no markers", mk(api, api), []int{2}},
		{"trailing end", mk(api, end), []int{2}},
		{"split", mk(api, end, api, api, end, api), []int{2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Batches(tt.in)
			if len(got) != len(tt.sizes) {
				t.Fatalf("got %d batches, want %d", len(got), len(tt.sizes))
			}
			var idx uint64
			for i, b := range got {
				if len(b) != tt.sizes[i] {
					t.Fatalf("batch %d has %d packets, want %d", i, len(b), tt.sizes[i])
				}
				for _, h := range b {
					if h.GlobalPacketIndex != idx {
						t.Fatalf("order broken at %d", idx)
					}
					idx++
				}
			}
		})
	}
}

func TestPlayCancelledBetweenBatches(t *testing.T) {
	xgl := &fakeBackend{}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	info := fileInfo([]packet.TracerID{packet.TracerXGL},
		apiCall(packet.TracerXGL, packet.PacketBeginAPIHere),
		apiCall(packet.TracerXGL, packet.PacketMarkerAPIGroupEnd),
	)
	ctx, cancel := context.WithCancel(context.Background())
	c.LoadTraceFile(ctx, info, nil)
	cancel()

	if c.PlayTraceFile(ctx, info) {
		t.Fatal("PlayTraceFile returned true after cancellation")
	}
	if len(xgl.replayed) != 0 {
		t.Fatalf("replayed %v after cancellation", xgl.replayed)
	}
	warns := bySeverity(bag, diag.SevWarning)
	if len(warns) != 1 || warns[0].Code != diag.PlayCancelled {
		t.Fatalf("warnings = %+v", warns)
	}
}

func TestProgressEvents(t *testing.T) {
	ch := make(chan Event, 16)
	c := NewController(Options{
		Factory:  factoryWith(map[packet.TracerID]*fakeBackend{packet.TracerXGL: {}}),
		Progress: ChannelSink{Ch: ch},
	})
	info := fileInfo([]packet.TracerID{packet.TracerXGL}, apiCall(packet.TracerXGL, packet.PacketBeginAPIHere))
	ctx := context.Background()
	c.LoadTraceFile(ctx, info, nil)
	c.PlayTraceFile(ctx, info)
	close(ch)

	var last Event
	seen := map[Status]bool{}
	for evt := range ch {
		seen[evt.Status] = true
		last = evt
	}
	if !seen[StatusLoading] || !seen[StatusPlaying] || last.Status != StatusDone {
		t.Fatalf("statuses = %v, last = %s", seen, last.Status)
	}
	if last.Done != 1 || last.Total != 1 || last.Stats.Replayed != 1 {
		t.Fatalf("last event = %+v", last)
	}
}

func TestInterpretPacket(t *testing.T) {
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: {}})
	ctx := context.Background()
	c.LoadTraceFile(ctx, fileInfo([]packet.TracerID{packet.TracerXGL}), nil)

	body, err := interpret.EncodeArgs(map[string]any{"gpu": 1})
	if err != nil {
		t.Fatalf("EncodeArgs: %v", err)
	}
	p := c.InterpretPacket(&packet.Header{TracerID: packet.TracerXGL, PacketID: packet.PacketBeginAPIHere, Body: body})
	if p == nil || p.Name != "xglApiVersion" || p.ArgsErr != nil {
		t.Fatalf("unexpected packet %+v", p)
	}

	if p := c.InterpretPacket(&packet.Header{TracerID: packet.TracerXGL, PacketID: 5000}); p != nil {
		t.Fatalf("unknown id interpreted as %q", p.Name)
	}
	warns := bySeverity(bag, diag.SevWarning)
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "5000") {
		t.Fatalf("warnings = %+v", warns)
	}
}

func TestInterpretPacketUsesPacketFamily(t *testing.T) {
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{
		packet.TracerMantle: {},
		packet.TracerXGL:    {},
	})
	ctx := context.Background()
	c.LoadTraceFile(ctx, fileInfo([]packet.TracerID{packet.TracerMantle, packet.TracerXGL}), nil)

	id := packet.PacketBeginAPIHere + 1
	if p := c.InterpretPacket(&packet.Header{TracerID: packet.TracerXGL, PacketID: id}); p == nil || p.Name != "xglCreateInstance" {
		t.Fatalf("xgl packet = %+v", p)
	}
	if p := c.InterpretPacket(&packet.Header{TracerID: packet.TracerMantle, PacketID: id}); p == nil || p.Name != "grGetGpuInfo" {
		t.Fatalf("mantle packet = %+v", p)
	}
	if p := c.InterpretPacket(&packet.Header{TracerID: packet.TracerGLFPS, PacketID: id}); p != nil {
		t.Fatalf("gl-fps packet interpreted as %q", p.Name)
	}
	warns := bySeverity(bag, diag.SevWarning)
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "tracer_id 1") {
		t.Fatalf("warnings = %+v", warns)
	}
}

func TestUnloadReportsCloseError(t *testing.T) {
	xgl := &fakeBackend{closeErr: errors.New("flush call log: disk full")}
	c, bag := newTestController(map[packet.TracerID]*fakeBackend{packet.TracerXGL: xgl})
	ctx := context.Background()
	c.LoadTraceFile(ctx, fileInfo([]packet.TracerID{packet.TracerXGL}), nil)

	c.UnloadTraceFile(ctx)
	errs := bySeverity(bag, diag.SevError)
	if len(errs) != 1 || errs[0].Code != diag.PlayUnloadFailed {
		t.Fatalf("errors = %+v", errs)
	}
	if len(errs[0].Notes) != 1 || !strings.Contains(errs[0].Notes[0].Msg, "disk full") {
		t.Fatalf("notes = %+v", errs[0].Notes)
	}
	if c.Session().Backend(packet.TracerXGL) != nil {
		t.Fatal("backend handle kept after failed close")
	}
}

func equalIndexes(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
