package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUPath:   filepath.Join(dir, "cpu.pprof"),
		MemPath:   filepath.Join(dir, "mem.pprof"),
		TracePath: filepath.Join(dir, "runtime.trace"),
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, p := range []string{opts.CPUPath, opts.MemPath, opts.TracePath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("profile %s: %v", filepath.Base(p), err)
		}
	}
}

func TestStartBadPath(t *testing.T) {
	_, err := Start(Options{CPUPath: filepath.Join(t.TempDir(), "missing", "cpu.pprof")})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestOptionsEnabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Fatal("empty options enabled")
	}
	if !(Options{MemPath: "m"}).Enabled() {
		t.Fatal("mem profile not enabled")
	}
}
