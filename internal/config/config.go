// Package config loads tracereplay.toml and applies TRACEREPLAY_* environment
// overrides on top of it. Command line flags override both and are applied by
// the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "tracereplay.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRACEREPLAY_"

type Config struct {
	Replay  ReplayConfig  `toml:"replay" envPrefix:"REPLAY_"`
	Output  OutputConfig  `toml:"output" envPrefix:"OUTPUT_"`
	Trace   TraceConfig   `toml:"trace" envPrefix:"TRACE_"`
	History HistoryConfig `toml:"history" envPrefix:"HISTORY_"`
}

type ReplayConfig struct {
	Width        uint32 `toml:"width" env:"WIDTH"`
	Height       uint32 `toml:"height" env:"HEIGHT"`
	DebugLevel   int    `toml:"debug_level" env:"DEBUG_LEVEL"`
	Jobs         int    `toml:"jobs" env:"JOBS"`
	CallLogDir   string `toml:"call_log_dir" env:"CALL_LOG_DIR"`
	FailOnErrors bool   `toml:"fail_on_errors" env:"FAIL_ON_ERRORS"`
}

type OutputConfig struct {
	Format         string `toml:"format" env:"FORMAT"`
	Color          string `toml:"color" env:"COLOR"`
	UI             string `toml:"ui" env:"UI"`
	MaxDiagnostics int    `toml:"max_diagnostics" env:"MAX_DIAGNOSTICS"`
}

type TraceConfig struct {
	Level    string `toml:"level" env:"LEVEL"`
	Mode     string `toml:"mode" env:"MODE"`
	Output   string `toml:"output" env:"OUTPUT"`
	RingSize int    `toml:"ring_size" env:"RING_SIZE"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Path    string `toml:"path" env:"PATH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Replay: ReplayConfig{Width: 800, Height: 600},
		Output: OutputConfig{
			Format:         "pretty",
			Color:          "auto",
			UI:             "auto",
			MaxDiagnostics: 100,
		},
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "stream",
			Output:   "",
			RingSize: 4096,
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load builds the effective configuration. An explicit path must exist; an
// empty path searches upwards from the working directory and falls back to
// defaults. It returns the config file used, or "".
func Load(path string) (Config, string, error) {
	cfg := Default()
	if path == "" {
		found, ok, err := Find(".")
		if err != nil {
			return Config{}, "", err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, "", err
		}
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return Config{}, "", fmt.Errorf("%s: %w", path, err)
		}
		return Config{}, "", err
	}
	return cfg, path, nil
}

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("history") && !meta.IsDefined("history", "enabled") {
		cfg.History.Enabled = true
	}
	return nil
}

// ApplyEnv overrides cfg from TRACEREPLAY_* variables. A nil environ reads
// the process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks enumerated settings and ranges.
func (c Config) Validate() error {
	if c.Replay.Width == 0 || c.Replay.Height == 0 {
		return fmt.Errorf("[replay] surface must be non-zero, got %dx%d", c.Replay.Width, c.Replay.Height)
	}
	if c.Replay.Jobs < 0 {
		return fmt.Errorf("[replay].jobs must be >= 0, got %d", c.Replay.Jobs)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("[output].max_diagnostics must be >= 0, got %d", c.Output.MaxDiagnostics)
	}
	if err := oneOf("[output].format", c.Output.Format, "pretty", "json", "short", "sarif"); err != nil {
		return err
	}
	if err := oneOf("[output].color", c.Output.Color, "auto", "on", "off"); err != nil {
		return err
	}
	if err := oneOf("[output].ui", c.Output.UI, "auto", "on", "off"); err != nil {
		return err
	}
	if c.Trace.RingSize < 0 {
		return fmt.Errorf("[trace].ring_size must be >= 0, got %d", c.Trace.RingSize)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

// HistoryPath returns the history database path, defaulting to the user
// cache directory.
func (c Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(base, "tracereplay", "history.db"), nil
}
