package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tracereplay/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [flags]",
	Short: "List recorded replay runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of most recent runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	path, err := activeConfig.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintf(out, "no runs recorded in %s\n", path)
		return nil
	}

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tOUTCOME\tPACKETS\tFAILED\tSKIPPED\tDURATION\tTRACE")
	for _, r := range runs {
		p.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%v\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Outcome,
			r.Packets, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond), r.TracePath)
	}
	return tw.Flush()
}
