package report

import (
	"fmt"
	"io"

	"github.com/scan-io-git/a11yscan/internal/fixer"
	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/pkg/shared/files"
)

// EventPrinter writes fix progress as one line per event.
type EventPrinter struct {
	w       io.Writer
	p       palette
	baseDir string
}

// NewEventPrinter creates a printer. Paths below baseDir are shown relative to it.
func NewEventPrinter(w io.Writer, colored bool, baseDir string) *EventPrinter {
	return &EventPrinter{w: w, p: newPalette(colored), baseDir: baseDir}
}

// Print writes a single event.
func (e *EventPrinter) Print(ev fixer.Event) {
	target := e.target(ev)
	switch ev.Kind {
	case fixer.EventStart:
		fmt.Fprintf(e.w, "%s %s\n", e.p.dim.Sprint("fixing"), target)
	case fixer.EventSuccess:
		fmt.Fprintf(e.w, "%s %s\n", e.p.ok.Sprint("fixed"), target)
	case fixer.EventError:
		fmt.Fprintf(e.w, "%s %s: %s\n", e.p.error.Sprint("failed"), target, ev.Message)
	case fixer.EventFallback:
		fmt.Fprintf(e.w, "%s %s, retrying issue by issue: %s\n", e.p.warning.Sprint("batch failed"), target, ev.Message)
	case fixer.EventPlanned:
		fmt.Fprintf(e.w, "%s %s %s\n", e.p.rule.Sprint("would fix"), target, firstMessage(ev.Issues))
	}
}

// PrintSummary writes the outcome of a fix run.
func (e *EventPrinter) PrintSummary(s fixer.Summary) {
	switch {
	case s.Diagnostic != "":
		fmt.Fprintf(e.w, "%s: %s\n", e.p.error.Sprint("Fixing agent unavailable"), s.Diagnostic)
	case s.Planned > 0 && s.Fixed+s.Failed == 0:
		fmt.Fprintf(e.w, "Dry run: %s would be sent to the fixing agent\n", plural(s.Planned, "issue"))
	default:
		fmt.Fprintf(e.w, "%s, %s (run %s)\n",
			e.p.ok.Sprintf("%d fixed", s.Fixed),
			e.failed(s.Failed),
			s.RunID)
	}
}

func (e *EventPrinter) failed(n int) string {
	if n == 0 {
		return "0 failed"
	}
	return e.p.error.Sprintf("%d failed", n)
}

func (e *EventPrinter) target(ev fixer.Event) string {
	path := files.DisplayPath(e.baseDir, ev.File)
	if ev.Batch || len(ev.Issues) != 1 {
		return fmt.Sprintf("%s in %s", plural(len(ev.Issues), "issue"), path)
	}
	is := ev.Issues[0]
	return fmt.Sprintf("%s %s:%d", e.p.rule.Sprintf("[%s]", is.RuleID), path, is.Line)
}

func firstMessage(list []issues.Issue) string {
	if len(list) == 0 {
		return ""
	}
	return list[0].Message
}
