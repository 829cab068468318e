package diagfmt

import (
	"encoding/json"
	"io"

	"tracereplay/internal/diag"
)

// LocationJSON представляет местоположение в trace-файле для JSON
type LocationJSON struct {
	File     string  `json:"file,omitempty"`
	Packet   *uint64 `json:"packet,omitempty"`
	PacketID uint16  `json:"packet_id,omitempty"`
	Tracer   string  `json:"tracer,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []string     `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	Dropped     int              `json:"dropped,omitempty"`
}

func makeLocation(loc diag.Location, mode PathMode, base string) LocationJSON {
	out := LocationJSON{File: formatPath(loc.File, mode, base)}
	if loc.HasPacket {
		idx := loc.Index
		out.Packet = &idx
		out.PacketID = uint16(loc.PacketID)
		out.Tracer = loc.TracerID.String()
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	if bag == nil {
		return DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	}
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Location, opts.PathMode, opts.BaseDir),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]string, len(d.Notes))
			for j, n := range d.Notes {
				dj.Notes[j] = n.Msg
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Errors:      bag.Count(diag.SevError),
		Warnings:    bag.Count(diag.SevWarning),
		Dropped:     bag.Dropped(),
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, opts))
}
