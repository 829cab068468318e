package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracereplay/internal/config"
	"tracereplay/internal/trace"
)

// activeTracer is dumped by dumpTraceOnPanic when it keeps a ring buffer.
var activeTracer trace.Tracer = trace.Nop

// setupTracing initializes the tracer from the merged trace settings.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (func(), error) {
	heartbeatInterval, err := cmd.Root().PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && cfg.Output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}

	mode, err := trace.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	output := cfg.Output
	if output == "" {
		output = "-"
	}

	tracer, err := trace.Open(trace.Config{
		Level:    level,
		Mode:     mode,
		Path:     output,
		RingSize: cfg.RingSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	stopHeartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)

	cleanup := func() {
		stopHeartbeat()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		activeTracer = trace.Nop
	}
	return cleanup, nil
}

// dumpTraceOnPanic prints the ring buffer of the active tracer to stderr and
// re-panics. Deferred at the top of long-running commands.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ring := trace.Ring(activeTracer); ring != nil {
		fmt.Fprintln(os.Stderr, "trace: last events before panic:")
		if err := ring.Dump(os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
	panic(r)
}
