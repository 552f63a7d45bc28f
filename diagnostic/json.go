package diagnostic

import (
	"encoding/json"
	"fmt"
)

// jsonDiagnostic mirrors the LSP-consumable shape from spec.md §6:
//
//	{ code, severity, message, target: { file, pos, end } | "no-target", format_args }
type jsonDiagnostic struct {
	Code       string            `json:"code"`
	Severity   Severity          `json:"severity"`
	Message    string            `json:"message"`
	Target     json.RawMessage   `json:"target"`
	FormatArgs map[string]string `json:"format_args,omitempty"`
}

type jsonTarget struct {
	File string `json:"file"`
	Pos  int    `json:"pos"`
	End  int    `json:"end"`
}

// MarshalJSON renders the diagnostic in the shape spec.md §6 requires.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	var target json.RawMessage
	var err error
	if d.Target.HasTarget() {
		target, err = json.Marshal(jsonTarget{
			File: d.Target.File.Path,
			Pos:  d.Target.Span.Pos,
			End:  d.Target.Span.End,
		})
	} else {
		target, err = json.Marshal("no-target")
	}
	if err != nil {
		return nil, fmt.Errorf("diagnostic: marshal target: %w", err)
	}
	return json.Marshal(jsonDiagnostic{
		Code:       d.Code,
		Severity:   d.Severity,
		Message:    d.Format(),
		Target:     target,
		FormatArgs: d.FormatArgs,
	})
}
