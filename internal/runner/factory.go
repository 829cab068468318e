package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tracereplay/internal/backend/calllog"
	"tracereplay/internal/interpret"
	"tracereplay/internal/packet"
	"tracereplay/internal/replayer"
)

// NewFactory registers a calllog backend for every family with a call table.
// With an empty logDir the call logs are discarded; otherwise each backend
// writes <logDir>/<trace base>.<family>.calls.ndjson.
func NewFactory(tracePath, logDir string) *replayer.Factory {
	f := replayer.NewFactory()
	for _, id := range []packet.TracerID{packet.TracerMantle, packet.TracerXGL} {
		table, ok := interpret.ForTracer(id)
		if !ok {
			continue
		}
		f.Register(id, calllog.Constructor(table, callLogOpener(tracePath, logDir, id)))
	}
	return f
}

// CallLogPath returns where the call log of family id for tracePath goes.
func CallLogPath(tracePath, logDir string, id packet.TracerID) string {
	base := filepath.Base(tracePath)
	for _, ext := range []string{".sz", ".ndjson", ".jsonl", ".trace", ".mp"} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(logDir, fmt.Sprintf("%s.%s.calls.ndjson", base, id))
}

func callLogOpener(tracePath, logDir string, id packet.TracerID) func() (io.Writer, error) {
	return func() (io.Writer, error) {
		if logDir == "" {
			return nil, nil
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("create call log dir: %w", err)
		}
		f, err := os.Create(CallLogPath(tracePath, logDir, id))
		if err != nil {
			return nil, fmt.Errorf("create call log: %w", err)
		}
		return f, nil
	}
}
