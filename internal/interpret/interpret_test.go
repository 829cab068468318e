package interpret

import (
	"testing"

	"tracereplay/internal/packet"
)

func TestTableInterpret(t *testing.T) {
	id, ok := XGL.ID("xglCmdDraw")
	if !ok {
		t.Fatal("xglCmdDraw missing from table")
	}
	body, err := EncodeArgs(map[string]any{"vertexCount": 3, "instanceCount": 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p, ok := XGL.Interpret(&packet.Header{TracerID: packet.TracerXGL, PacketID: id, Body: body})
	if !ok {
		t.Fatal("expected packet to be recognized")
	}
	if p.Name != "xglCmdDraw" || p.Family != packet.TracerXGL {
		t.Fatalf("unexpected packet %+v", p)
	}
	if p.ArgsErr != nil {
		t.Fatalf("args error: %v", p.ArgsErr)
	}
	if len(p.Args) != 2 {
		t.Fatalf("args = %v", p.Args)
	}
}

func TestTableRejectsUnknown(t *testing.T) {
	tests := []packet.PacketID{
		packet.PacketMessage,
		packet.PacketBeginAPIHere - 1,
		packet.PacketBeginAPIHere + packet.PacketID(XGL.Len()),
	}
	for _, id := range tests {
		if p, ok := XGL.Interpret(&packet.Header{PacketID: id}); ok || p != nil {
			t.Errorf("id %v unexpectedly interpreted as %+v", id, p)
		}
	}
	if _, ok := XGL.Interpret(nil); ok {
		t.Error("nil header interpreted")
	}
}

func TestBadArgumentsAreKept(t *testing.T) {
	p, ok := XGL.Interpret(&packet.Header{PacketID: packet.PacketBeginAPIHere, Body: []byte{0xc1}})
	if !ok {
		t.Fatal("packet should still be recognized")
	}
	if p.ArgsErr == nil {
		t.Fatal("expected ArgsErr for an invalid body")
	}
}

func TestFirstEntrypointIsThreshold(t *testing.T) {
	name, ok := XGL.Name(packet.PacketBeginAPIHere)
	if !ok || name != "xglApiVersion" {
		t.Fatalf("Name(threshold) = %q, %v", name, ok)
	}
}

func TestForTracer(t *testing.T) {
	if in, ok := ForTracer(packet.TracerXGL); !ok || in.Family() != packet.TracerXGL {
		t.Fatal("no xgl interpreter")
	}
	if _, ok := ForTracer(packet.TracerGLFPS); ok {
		t.Fatal("gl-fps has no call table")
	}
}

func TestCallIDs(t *testing.T) {
	ids := CallIDs("grQueueSubmit")
	want, _ := Mantle.ID("grQueueSubmit")
	if len(ids) != 1 || ids[packet.TracerMantle] != want {
		t.Fatalf("CallIDs = %v, want mantle:%d", ids, want)
	}
	if ids := CallIDs("missing"); len(ids) != 0 {
		t.Fatalf("CallIDs(missing) = %v", ids)
	}
}
