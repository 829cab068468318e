package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tracereplay/internal/diag"
	"tracereplay/internal/packet"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	h := &packet.Header{GlobalPacketIndex: 42, TracerID: packet.TracerXGL, PacketID: 11}
	bag.Add(diag.New(diag.SevError, diag.PlayReplayFailed, diag.At("/data/run/frame.trace", h), "failed to replay packet_id 11").
		WithNote("replayer result: call-failed"))
	bag.Add(diag.New(diag.SevWarning, diag.LoadNoImplementation, diag.InFile("/data/run/frame.trace"), "couldn't create replayer"))
	return bag
}

func TestPrettyPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		base     string
		contains string
	}{
		{"Auto path", PathModeAuto, "", "/data/run/frame.trace#42:"},
		{"Relative path", PathModeRelative, "/data", "run/frame.trace#42:"},
		{"Basename only", PathModeBasename, "", "frame.trace#42:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, sampleBag(), PrettyOpts{PathMode: tt.mode, BaseDir: tt.base, ShowNotes: true})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR PLY2004: failed to replay packet_id 11 [xgl id=11]") {
				t.Errorf("missing error line:\n%s", output)
			}
			if !strings.Contains(output, "  note: replayer result: call-failed") {
				t.Errorf("missing note:\n%s", output)
			}
			if strings.Contains(output, "\x1b[") {
				t.Errorf("color codes without Color option:\n%s", output)
			}
		})
	}
}

func TestPrettyColorAndLimit(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{Color: true, Max: 1})
	output := buf.String()
	if !strings.Contains(output, "\x1b[") {
		t.Errorf("expected ANSI colors:\n%q", output)
	}
	if !strings.Contains(output, "... 1 more diagnostics not shown") {
		t.Errorf("expected truncation line:\n%s", output)
	}
	if strings.Contains(output, "note:") {
		t.Errorf("notes printed without ShowNotes:\n%s", output)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("counts = %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Code != "PLY2004" || first.Location.File != "frame.trace" || first.Location.Packet == nil || *first.Location.Packet != 42 {
		t.Fatalf("first = %+v", first)
	}
	if first.Location.Tracer != "xgl" || len(first.Notes) != 1 {
		t.Fatalf("first = %+v", first)
	}
	if out.Diagnostics[1].Location.Packet != nil {
		t.Fatalf("file-level diagnostic has a packet: %+v", out.Diagnostics[1])
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	Short(&buf, sampleBag(), PathModeBasename)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "frame.trace#42:PLY2004:ERROR:failed to replay packet_id 11" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "frame.trace:LDR1002:WARNING:couldn't create replayer" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, sampleBag(), SarifRunMeta{ToolName: "tracereplay", ToolVersion: "1.0.0"}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 2 || run.Results[0].Level != "error" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("run = %+v", run)
	}
	if !strings.Contains(run.Results[0].Message.Text, "(packet 42)") {
		t.Errorf("message = %q", run.Results[0].Message.Text)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Error("run with errors marked successful")
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, sampleBag(), false)
	if got := strings.TrimSpace(buf.String()); got != "1 error(s), 1 warning(s)" {
		t.Errorf("summary = %q", got)
	}
}
