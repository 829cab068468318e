package diagfmt

import (
	"fmt"
	"io"

	"tracereplay/internal/diag"
)

// Short prints one line per diagnostic without color or notes:
// <path>#<packet>:<CODE>:<severity>:<message>
func Short(w io.Writer, bag *diag.Bag, mode PathMode) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s:%s:%s:%s\n", formatLocation(d.Location, mode, ""), d.Code.ID(), d.Severity, d.Message)
	}
}
