package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tracereplay/internal/diag"
	"tracereplay/internal/diagfmt"
	"tracereplay/internal/history"
	"tracereplay/internal/observ"
	"tracereplay/internal/packet"
	"tracereplay/internal/runner"
	"tracereplay/internal/version"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] <file>...",
	Short: "Replay one or more trace files",
	Long: `Load every trace file, create a replayer for each API listed in its header,
dispatch its packets in recorded order and tear the replayers down again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().String("format", "", "diagnostics format (pretty|json|short|sarif; default from config)")
	replayCmd.Flags().Int("jobs", 0, "max files replayed in parallel (0=auto)")
	replayCmd.Flags().String("ui", "", "progress UI mode (auto|on|off; default from config)")
	replayCmd.Flags().String("call-log", "", "directory for per-API call logs (default: discard)")
	replayCmd.Flags().Bool("history", false, "record the run in the history database")
	replayCmd.Flags().Bool("fail-on-errors", false, "exit with status 2 when any packet failed or was skipped")
	replayCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	replayCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	replayCmd.Flags().Uint32("width", 0, "replay surface width (default from config)")
	replayCmd.Flags().Uint32("height", 0, "replay surface height (default from config)")
	replayCmd.Flags().Int("debug-level", -1, "debug level passed to replayers (default from config)")
}

type replayOptions struct {
	format       string
	ui           uiMode
	jobs         int
	callLogDir   string
	history      bool
	failOnErrors bool
	withNotes    bool
	fullPath     bool
	surface      packet.Surface
	debugLevel   int
	quiet        bool
	timings      bool
	color        bool
	maxDiags     int
}

func readReplayOptions(cmd *cobra.Command) (replayOptions, error) {
	cfg := activeConfig
	opts := replayOptions{
		format:       cfg.Output.Format,
		jobs:         cfg.Replay.Jobs,
		callLogDir:   cfg.Replay.CallLogDir,
		history:      cfg.History.Enabled,
		failOnErrors: cfg.Replay.FailOnErrors,
		surface:      packet.Surface{Width: cfg.Replay.Width, Height: cfg.Replay.Height},
		debugLevel:   cfg.Replay.DebugLevel,
		maxDiags:     cfg.Output.MaxDiagnostics,
		color:        useColor(cfg.Output.Color),
	}
	uiValue := cfg.Output.UI

	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if opts.format, err = flags.GetString("format"); err != nil {
			return opts, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if opts.jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("ui") {
		if uiValue, err = flags.GetString("ui"); err != nil {
			return opts, fmt.Errorf("failed to get ui flag: %w", err)
		}
	}
	if flags.Changed("call-log") {
		if opts.callLogDir, err = flags.GetString("call-log"); err != nil {
			return opts, fmt.Errorf("failed to get call-log flag: %w", err)
		}
	}
	if flags.Changed("history") {
		if opts.history, err = flags.GetBool("history"); err != nil {
			return opts, fmt.Errorf("failed to get history flag: %w", err)
		}
	}
	if flags.Changed("fail-on-errors") {
		if opts.failOnErrors, err = flags.GetBool("fail-on-errors"); err != nil {
			return opts, fmt.Errorf("failed to get fail-on-errors flag: %w", err)
		}
	}
	if flags.Changed("width") {
		if opts.surface.Width, err = flags.GetUint32("width"); err != nil {
			return opts, fmt.Errorf("failed to get width flag: %w", err)
		}
	}
	if flags.Changed("height") {
		if opts.surface.Height, err = flags.GetUint32("height"); err != nil {
			return opts, fmt.Errorf("failed to get height flag: %w", err)
		}
	}
	if flags.Changed("debug-level") {
		if opts.debugLevel, err = flags.GetInt("debug-level"); err != nil {
			return opts, fmt.Errorf("failed to get debug-level flag: %w", err)
		}
	}
	if opts.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}

	switch opts.format {
	case "pretty", "json", "short", "sarif":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be pretty, json, short or sarif)", opts.format)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	return opts, nil
}

// runReplay executes the "replay" command. It exits with status 1 when a
// file failed to load and, with --fail-on-errors, with status 2 when a
// loaded file replayed with errors or skipped packets.
func runReplay(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readReplayOptions(cmd)
	if err != nil {
		return err
	}

	var store *history.Store
	if opts.history {
		path, err := activeConfig.HistoryPath()
		if err != nil {
			return err
		}
		if store, err = history.Open(path); err != nil {
			return err
		}
		defer store.Close()
	}

	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}

	req := runner.Request{
		Files:          args,
		Jobs:           opts.jobs,
		Surface:        opts.surface,
		DebugLevel:     opts.debugLevel,
		CallLogDir:     opts.callLogDir,
		MaxDiagnostics: opts.maxDiags,
		Timer:          timer,
		History:        store,
	}

	var (
		results []runner.FileResult
		runErr  error
	)
	if shouldUseTUI(opts.ui) && !opts.quiet && opts.format == "pretty" {
		results, runErr = runReplayWithUI(cmd.Context(), "replaying", req)
	} else {
		results, runErr = runner.Run(cmd.Context(), req)
	}
	if len(results) == 0 && runErr != nil {
		return runErr
	}

	// a failure after the replay (recording history) must not hide its results
	if err := printResults(cmd.OutOrStdout(), results, opts, args); err != nil {
		return errors.Join(runErr, err)
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if runErr != nil {
		return runErr
	}
	return replayExitCode(results, opts.failOnErrors)
}

func replayExitCode(results []runner.FileResult, failOnErrors bool) error {
	code := 0
	for _, r := range results {
		switch {
		case !r.Loaded:
			code = 1
		case failOnErrors && r.Failed() && code == 0:
			code = 2
		}
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func printResults(out io.Writer, results []runner.FileResult, opts replayOptions, args []string) error {
	merged := diag.NewBag(opts.maxDiags)
	for _, r := range results {
		merged.Merge(r.Bag)
	}

	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch opts.format {
	case "json":
		return diagfmt.JSON(out, merged, diagfmt.JSONOpts{
			PathMode:     pathMode,
			IncludeNotes: opts.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(out, merged, diagfmt.SarifRunMeta{
			ToolName:       "tracereplay",
			ToolVersion:    version.Version,
			InvocationArgs: append([]string{"replay"}, args...),
		})
	case "short":
		diagfmt.Short(out, merged, pathMode)
		return nil
	}

	if !opts.quiet || merged.HasErrors() {
		diagfmt.Pretty(out, merged, diagfmt.PrettyOpts{
			Color:     opts.color,
			PathMode:  pathMode,
			ShowNotes: opts.withNotes,
		})
	}
	if opts.quiet {
		return nil
	}
	p := message.NewPrinter(language.English)
	for _, r := range results {
		p.Fprintf(out, "%s: %s, %d packets, %d replayed, %d failed, %d skipped (%v)\n",
			r.Path, r.Outcome, r.Stats.Packets, r.Stats.Replayed, r.Stats.Failed, r.Stats.Skipped,
			r.Duration.Round(time.Millisecond))
	}
	if len(results) > 1 {
		p.Fprintf(out, "%d files, %s\n", len(results), strings.TrimSpace(summaryLine(merged)))
	} else {
		diagfmt.Summary(out, merged, opts.color)
	}
	return nil
}

func summaryLine(bag *diag.Bag) string {
	var b strings.Builder
	diagfmt.Summary(&b, bag, false)
	return b.String()
}
