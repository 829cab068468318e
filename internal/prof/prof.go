// Package prof wires the --cpu-profile, --mem-profile and --runtime-trace
// flags to runtime/pprof and runtime/trace.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the output files; empty paths disable that profile.
type Options struct {
	CPUPath   string
	MemPath   string
	TracePath string
}

// Enabled reports whether any profile is requested.
func (o Options) Enabled() bool {
	return o.CPUPath != "" || o.MemPath != "" || o.TracePath != ""
}

// Session is an active set of profiles.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and runtime tracing as requested. On error,
// anything already started is stopped.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("start runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends active profiles and writes the heap profile if requested.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	if err := s.stopCPU(); err != nil {
		errs = append(errs, err)
	}
	if s.traceFile != nil {
		trace.Stop()
		if err := s.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close runtime trace: %w", err))
		}
		s.traceFile = nil
	}
	if s.opts.MemPath != "" {
		if err := writeMem(s.opts.MemPath); err != nil {
			errs = append(errs, err)
		}
		s.opts.MemPath = ""
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	if err != nil {
		return fmt.Errorf("close cpu profile: %w", err)
	}
	return nil
}

func writeMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close heap profile: %w", closeErr)
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}
