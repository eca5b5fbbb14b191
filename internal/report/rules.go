package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/scan-io-git/a11yscan/internal/rules"
)

// RuleJSON describes a registry entry.
type RuleJSON struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	WCAG        string `json:"wcag"`
	Description string `json:"description"`
	Fix         string `json:"fix"`
}

// WriteRules lists rules in registry order, as a table or as JSON.
func WriteRules(w io.Writer, list []rules.Rule, asJSON bool) error {
	if asJSON {
		out := make([]RuleJSON, 0, len(list))
		for _, r := range list {
			out = append(out, RuleJSON{
				ID:          r.ID,
				Kind:        r.Kind().String(),
				Severity:    string(r.Severity),
				WCAG:        r.WCAG,
				Description: r.Description,
				Fix:         r.Fix,
			})
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSEVERITY\tWCAG\tDESCRIPTION")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Kind(), r.Severity, r.WCAG, r.Description)
	}
	return tw.Flush()
}
