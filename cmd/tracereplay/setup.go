package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tracereplay/internal/config"
)

// exitError carries a process exit code without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitCodeOf(err error) (int, bool) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code, true
	}
	return 0, false
}

// cleanups run in reverse order from runCleanups.
var cleanups []func()

// activeConfig is the merged configuration of the running command.
var activeConfig config.Config

func setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	activeConfig = cfg

	traceCleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, traceCleanup)

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, profCleanup)
	return nil
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// loadConfig merges tracereplay.toml, TRACEREPLAY_* variables and the flags
// the user set explicitly, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	root := cmd.Root()
	path, err := root.PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, _, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := root.PersistentFlags()
	if flags.Changed("color") {
		if cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace flag: %w", err)
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("trace-mode") {
		if cfg.Trace.Mode, err = flags.GetString("trace-mode"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-mode flag: %w", err)
		}
	}
	if flags.Changed("trace-ring-size") {
		if cfg.Trace.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// useColor resolves the color setting against stdout.
func useColor(setting string) bool {
	return setting == "on" || (setting == "auto" && isTerminal(stdoutFile()))
}
