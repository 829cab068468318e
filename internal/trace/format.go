package trace

import (
	"encoding/json"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatText   Format = iota // one indented line per event
	FormatNDJSON               // one JSON object per line
)

// FormatFor picks NDJSON for .ndjson and .jsonl outputs and text otherwise.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, _ := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	return append(data, '\n')
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
	KindHeartbeat: "♡ ",
}

// formatText renders "[seq] g<gid> <indent><mark>name (detail) {k=v}".
// Indentation follows the scope so packet points sit under their phase.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strconv.FormatUint(ev.Seq, 10))
	sb.WriteString("] g")
	sb.WriteString(strconv.FormatUint(ev.GID, 10))
	sb.WriteString(" ")
	if ev.Scope > ScopeSession {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeSession)))
	}
	sb.WriteString(kindMarks[ev.Kind])
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Extra[k])
		}
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
