package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tracereplay/internal/version"
)

type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
}

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include commit and build date")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tracereplay build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(versionFormat)
		switch format {
		case "pretty", "json":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
		info := version.Current()
		if format == "json" {
			return renderVersionJSON(cmd.OutOrStdout(), info)
		}
		renderVersionPretty(cmd.OutOrStdout(), info, versionFull)
		return nil
	},
}

func renderVersionPretty(out io.Writer, info version.Info, full bool) {
	fmt.Fprintf(out, "tracereplay %s\n", version.Colored())
	if !full {
		return
	}
	fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
	fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
}

func renderVersionJSON(out io.Writer, info version.Info) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{Tool: "tracereplay", Info: info})
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
