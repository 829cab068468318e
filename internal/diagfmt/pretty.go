package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"tracereplay/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Bold)
	noteColor    = color.New(color.FgBlue)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// paint renders s with c only when enabled, regardless of color.NoColor.
func paint(c *color.Color, enabled bool, s string) string {
	if !enabled {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>#<packet>: <SEV> <CODE>: <Message>
// затем Notes с отступом. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	for _, d := range items[:limit] {
		loc := formatLocation(d.Location, opts.PathMode, opts.BaseDir)
		if loc != "" {
			fmt.Fprintf(w, "%s: ", loc)
		}
		fmt.Fprintf(w, "%s %s: %s",
			paint(severityColor(d.Severity), opts.Color, d.Severity.String()),
			paint(codeColor, opts.Color, d.Code.ID()),
			d.Message,
		)
		if d.Location.HasPacket {
			fmt.Fprintf(w, " [%s id=%d]", d.Location.TracerID, d.Location.PacketID)
		}
		fmt.Fprintln(w)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", paint(noteColor, opts.Color, "note:"), n.Msg)
		}
	}
	if hidden := len(items) - limit; hidden > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown\n", hidden)
	}
}

// Summary prints the one-line error and warning count.
func Summary(w io.Writer, bag *diag.Bag, useColor bool) {
	if bag == nil {
		return
	}
	errs := bag.Count(diag.SevError)
	warns := bag.Count(diag.SevWarning)
	line := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if dropped := bag.Dropped(); dropped > 0 {
		line += fmt.Sprintf(", %d over the diagnostics limit", dropped)
	}
	switch {
	case errs > 0:
		line = paint(errorColor, useColor, line)
	case warns > 0:
		line = paint(warningColor, useColor, line)
	}
	fmt.Fprintln(w, line)
}
