package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/issues"
)

//go:embed templates/report.html
var templatesFS embed.FS

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// ordinalDate returns a string with the ordinal number of the day
// helper function for html template
func ordinalDate(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// formatDateTime formats a time.Time object into the specified string format.
// helper function for html template
func formatDateTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d %d:%02d:%02d %s", ordinalDate(t.Day()), t.Month(), t.Year(), hour, t.Minute(), t.Second(), t.Format("pm"))
}

// NewTemplate parses the embedded report template.
func NewTemplate() (*template.Template, error) {
	return template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"isError":        func(s issues.Severity) bool { return s == issues.SeverityError },
		}).
		ParseFS(templatesFS, "templates/report.html")
}

type htmlFile struct {
	Path   string
	Issues []issues.Issue
}

type htmlData struct {
	Metadata Metadata
	Totals   engine.Totals
	Files    []htmlFile
	Skipped  []SkippedJSON
}

// WriteHTML renders a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	tmpl, err := NewTemplate()
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	data := htmlData{Metadata: r.Metadata, Totals: r.Totals}
	if data.Metadata.Title == "" {
		data.Metadata.Title = "Accessibility report"
	}
	for _, res := range r.Results {
		if res.Skipped {
			data.Skipped = append(data.Skipped, SkippedJSON{Path: r.DisplayPath(res.Path), Reason: res.Reason})
			continue
		}
		if len(res.Issues) > 0 {
			data.Files = append(data.Files, htmlFile{Path: r.DisplayPath(res.Path), Issues: res.Issues})
		}
	}
	return tmpl.Execute(w, data)
}
