package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/rules"
	"github.com/scan-io-git/a11yscan/pkg/shared/files"
)

// Format is an output format of the scan report.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
	FormatHTML  Format = "html"
)

var ErrUnknownFormat = errors.New("unknown report format")

// Metadata describes the run that produced a report.
type Metadata struct {
	Tool    string
	Version string
	Title   string    // html only
	Time    time.Time // html only
	BaseDir string    // paths below it are shown relative to it

	// Version control state of the scanned tree, sarif only.
	Repository string
	Branch     string
	Revision   string
}

// Report is a scan outcome ready to be rendered.
type Report struct {
	Metadata Metadata
	Results  []engine.FileResult
	Rules    []rules.Rule // rules that were evaluated
	Totals   engine.Totals
}

// New builds a report from scan results. Results keep their order.
func New(meta Metadata, results []engine.FileResult, evaluated []rules.Rule) *Report {
	return &Report{
		Metadata: meta,
		Results:  results,
		Rules:    evaluated,
		Totals:   engine.Summarize(results),
	}
}

// Checked returns the results of files that were analyzed.
func (r *Report) Checked() []engine.FileResult {
	var out []engine.FileResult
	for _, res := range r.Results {
		if !res.Skipped {
			out = append(out, res)
		}
	}
	return out
}

// Skipped returns the results of files that could not be analyzed.
func (r *Report) Skipped() []engine.FileResult {
	var out []engine.FileResult
	for _, res := range r.Results {
		if res.Skipped {
			out = append(out, res)
		}
	}
	return out
}

// DisplayPath returns the path as it is shown in every format.
func (r *Report) DisplayPath(path string) string {
	return files.DisplayPath(r.Metadata.BaseDir, path)
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatText, FormatJSON, FormatSARIF, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Write renders the report. colored only affects the text format.
func Write(w io.Writer, format Format, r *Report, colored bool) error {
	switch format {
	case FormatText:
		return WriteText(w, r, colored)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatSARIF:
		return WriteSARIF(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ColorEnabled reports whether w is a terminal that should receive colored output.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
