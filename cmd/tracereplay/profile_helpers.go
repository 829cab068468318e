package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracereplay/internal/prof"
)

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers. It returns a cleanup function that is safe to call
// multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	opts := prof.Options{CPUPath: cpuProfile, MemPath: memProfile, TracePath: tracePath}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}

	cleaned := false
	cleanup := func() {
		if cleaned {
			return
		}
		cleaned = true
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write profiles: %v\n", err)
		}
	}
	return cleanup, nil
}
