package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"tracereplay/internal/diag"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Пакет указывается в тексте сообщения: SARIF не знает позиций в trace-файлах.
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: []sarifResult{},
	}
	run.Invocations = []sarifInvocation{{
		Arguments:           meta.InvocationArgs,
		ExecutionSuccessful: bag == nil || !bag.HasErrors(),
	}}

	seen := map[diag.Code]bool{}
	if bag != nil {
		for _, d := range bag.Items() {
			if !seen[d.Code] {
				seen[d.Code] = true
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
					ID:               d.Code.ID(),
					ShortDescription: sarifMessage{Text: d.Code.Title()},
				})
			}
			text := d.Message
			if d.Location.HasPacket {
				text = fmt.Sprintf("%s (packet %d)", text, d.Location.Index)
			}
			res := sarifResult{
				RuleID:  d.Code.ID(),
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: text},
			}
			if d.Location.File != "" {
				res.Locations = []sarifLocation{{
					PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: d.Location.File}},
				}}
			}
			run.Results = append(run.Results, res)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	})
}
