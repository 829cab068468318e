package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracereplay/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tracereplay",
	Short: "Replay recorded graphics API traces",
	Long: `tracereplay walks recorded API-call packets and dispatches them to
per-API replayer backends, reporting per-packet problems without stopping.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1; replay failures exit with the
// code chosen by the command.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to tracereplay.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()
	if err != nil {
		if code, ok := exitCodeOf(err); ok {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
