package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracereplay/internal/packet"
	"tracereplay/internal/tracefile"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <in> <out>",
	Short: "Re-encode a trace file",
	Long: `Read a trace file and write it in another container format. Without --to the
format follows the output extension: .ndjson/.jsonl, .trace/.mp (msgpack) or
.sz (snappy-compressed msgpack).`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "output format (ndjson|msgpack|snappy; default from the output extension)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return fmt.Errorf("failed to get to flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	in, out := args[0], args[1]
	info, format, err := convertTrace(in, out, to)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %d packets)\n", in, out, format, info.PacketCount())
	}
	return nil
}

// convertTrace re-encodes in as out. An empty to picks the format from out's
// extension.
func convertTrace(in, out, to string) (*packet.FileInfo, tracefile.Format, error) {
	var (
		format tracefile.Format
		err    error
	)
	if to != "" {
		format, err = tracefile.ParseFormat(to)
	} else {
		format, err = tracefile.FormatFor(out)
	}
	if err != nil {
		return nil, tracefile.FormatUnknown, fmt.Errorf("%s: %w", out, err)
	}
	info, err := tracefile.ReadFile(in)
	if err != nil {
		return nil, format, err
	}
	if err := tracefile.WriteFileAs(out, format, info); err != nil {
		return nil, format, fmt.Errorf("write %s: %w", out, err)
	}
	return info, format, nil
}
