package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tracereplay/internal/diag"
	"tracereplay/internal/diagfmt"
	"tracereplay/internal/interpret"
	"tracereplay/internal/packet"
	"tracereplay/internal/replay"
	"tracereplay/internal/tracefile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <file>",
	Short: "Print every packet of a trace file",
	Long:  `Interpret every packet of a trace file with its API family's call table and print one line per packet.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("calls-only", false, "skip control packets")
	inspectCmd.Flags().Int("limit", 0, "stop after N packets (0 = all)")
	inspectCmd.Flags().String("call", "", "only show calls to this entrypoint, e.g. xglQueueSubmit")
}

func runInspect(cmd *cobra.Command, args []string) error {
	callsOnly, err := cmd.Flags().GetBool("calls-only")
	if err != nil {
		return fmt.Errorf("failed to get calls-only flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	call, err := cmd.Flags().GetString("call")
	if err != nil {
		return fmt.Errorf("failed to get call flag: %w", err)
	}
	keep, err := callFilter(call)
	if err != nil {
		return err
	}

	info, err := tracefile.ReadFile(args[0])
	if err != nil {
		return err
	}

	bag := diag.NewBag(activeConfig.Output.MaxDiagnostics)
	ctrl := replay.NewController(replay.Options{Reporter: diag.BagReporter{Bag: bag}})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: version %d, tracers %s, %d packets\n",
		info.Path, info.Header.Version, tracerList(info.Header.TracerIDs), info.PacketCount())

	shown := 0
	for _, h := range info.Packets {
		if limit > 0 && shown >= limit {
			break
		}
		if !keep(h) {
			continue
		}
		if h.PacketID.IsControl() || !h.PacketID.IsAPICall() {
			if callsOnly {
				continue
			}
			printControl(out, h)
			shown++
			continue
		}
		p := ctrl.InterpretPacket(h)
		if p == nil {
			fmt.Fprintf(out, "%8d  %-9s <unknown id %d>\n", h.GlobalPacketIndex, h.TracerID, h.PacketID)
		} else {
			fmt.Fprintf(out, "%8d  %-9s %s(%s)\n", h.GlobalPacketIndex, h.TracerID, p.Name, formatArgs(p.Args))
		}
		shown++
	}

	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{Color: useColor(activeConfig.Output.Color)})
	}
	return nil
}

// callFilter matches packets recording a call to name in any family that
// knows it. An empty name keeps everything.
func callFilter(name string) (func(*packet.Header) bool, error) {
	if name == "" {
		return func(*packet.Header) bool { return true }, nil
	}
	ids := interpret.CallIDs(name)
	if len(ids) == 0 {
		return nil, fmt.Errorf("unknown entrypoint %q", name)
	}
	return func(h *packet.Header) bool {
		id, ok := ids[h.TracerID]
		return ok && h.PacketID == id
	}, nil
}

func printControl(out io.Writer, h *packet.Header) {
	if h.PacketID == packet.PacketMessage {
		msg, err := packet.DecodeMessage(h)
		if err == nil {
			fmt.Fprintf(out, "%8d  %-9s %s %s: %s\n", h.GlobalPacketIndex, h.TracerID, h.PacketID, msg.Level, msg.Text)
			return
		}
	}
	fmt.Fprintf(out, "%8d  %-9s %s\n", h.GlobalPacketIndex, h.TracerID, h.PacketID)
}

func tracerList(ids []packet.TracerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func formatArgs(args map[string]any) string {
	keys := slices.Sorted(maps.Keys(args))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, args[k])
	}
	return strings.Join(parts, ", ")
}
