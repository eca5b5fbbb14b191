package report

import (
	"encoding/json"
	"io"

	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/issues"
)

// FileJSON is one analyzed file in the JSON report.
type FileJSON struct {
	Path     string         `json:"path"`
	Kind     string         `json:"kind"`
	Elements int            `json:"elements"`
	Issues   []issues.Issue `json:"issues"`
}

// SkippedJSON is a file that could not be analyzed.
type SkippedJSON struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// OutputJSON is the root of the JSON report.
type OutputJSON struct {
	Tool    string        `json:"tool"`
	Version string        `json:"version,omitempty"`
	Files   []FileJSON    `json:"files"`
	Skipped []SkippedJSON `json:"skipped"`
	Totals  engine.Totals `json:"totals"`
}

// BuildJSON converts a report into its JSON shape.
func BuildJSON(r *Report) OutputJSON {
	out := OutputJSON{
		Tool:    r.Metadata.Tool,
		Version: r.Metadata.Version,
		Files:   []FileJSON{},
		Skipped: []SkippedJSON{},
		Totals:  r.Totals,
	}
	for _, res := range r.Results {
		if res.Skipped {
			out.Skipped = append(out.Skipped, SkippedJSON{Path: r.DisplayPath(res.Path), Reason: res.Reason})
			continue
		}
		list := res.Issues
		if list == nil {
			list = []issues.Issue{}
		}
		out.Files = append(out.Files, FileJSON{
			Path:     r.DisplayPath(res.Path),
			Kind:     res.Kind.String(),
			Elements: res.Elements,
			Issues:   list,
		})
	}
	return out
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildJSON(r))
}
