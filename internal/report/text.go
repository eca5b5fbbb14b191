package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/scan-io-git/a11yscan/internal/issues"
)

type palette struct {
	path    *color.Color
	error   *color.Color
	warning *color.Color
	rule    *color.Color
	dim     *color.Color
	ok      *color.Color
}

func newPalette(colored bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:    mk(color.Bold, color.Underline),
		error:   mk(color.FgRed, color.Bold),
		warning: mk(color.FgYellow, color.Bold),
		rule:    mk(color.FgCyan),
		dim:     mk(color.Faint),
		ok:      mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(s issues.Severity) *color.Color {
	if s == issues.SeverityError {
		return p.error
	}
	return p.warning
}

// WriteText renders a human readable report grouped by file, then the skipped files, then totals.
func WriteText(w io.Writer, r *Report, colored bool) error {
	p := newPalette(colored)
	b := &strings.Builder{}

	for _, res := range r.Checked() {
		if len(res.Issues) == 0 {
			continue
		}
		fmt.Fprintln(b, p.path.Sprint(r.DisplayPath(res.Path)))
		for _, is := range res.Issues {
			fmt.Fprintf(b, "  %s  %s  %s %s\n",
				p.dim.Sprintf("line %-4d", is.Line),
				p.severity(is.Severity).Sprintf("%-7s", is.Severity),
				p.rule.Sprintf("[%s]", is.RuleID),
				is.Message)
			if src := strings.TrimSpace(is.SourceLineText); src != "" {
				fmt.Fprintf(b, "             %s\n", p.dim.Sprint(src))
			}
			if is.Fix != "" {
				fmt.Fprintf(b, "             fix: %s\n", is.Fix)
			}
		}
		fmt.Fprintln(b)
	}

	if skipped := r.Skipped(); len(skipped) > 0 {
		fmt.Fprintln(b, p.path.Sprint("Skipped files"))
		for _, res := range skipped {
			fmt.Fprintf(b, "  %s: %s\n", r.DisplayPath(res.Path), res.Reason)
		}
		fmt.Fprintln(b)
	}

	t := r.Totals
	checked := t.Files - t.Skipped
	if t.Errors+t.Warnings == 0 {
		fmt.Fprintf(b, "%s in %s", p.ok.Sprint("No accessibility issues found"), plural(checked, "file"))
	} else {
		fmt.Fprintf(b, "%s, %s in %s",
			p.error.Sprint(plural(t.Errors, "error")),
			p.warning.Sprint(plural(t.Warnings, "warning")),
			plural(checked, "file"))
	}
	if t.Skipped > 0 {
		fmt.Fprintf(b, " (%d skipped)", t.Skipped)
	}
	fmt.Fprintln(b)

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
