package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
	"github.com/scan-io-git/a11yscan/internal/rules"
)

// Reasons a file is reported as skipped instead of checked.
const (
	ReasonUnreadable = "unreadable"
	ReasonTooLarge   = "larger than the size limit"
	ReasonParse      = "could not be parsed"
	ReasonNoMarkup   = "no markup elements found"
)

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path     string         `json:"path"`
	Kind     markup.Kind    `json:"-"`
	Issues   []issues.Issue `json:"issues"`
	Elements int            `json:"elements"`
	Skipped  bool           `json:"skipped,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// Totals summarizes a set of file results.
type Totals struct {
	Files    int `json:"files"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Scanner represents the configuration and behavior of a scan.
type Scanner struct {
	registry       *rules.Registry // Rules to evaluate
	concurrentJobs int             // Number of files checked at once
	maxFileSize    int64           // Files above this size are skipped, 0 means no limit
	logger         hclog.Logger    // Logger for logging messages and errors
}

// New creates a new Scanner instance with the provided configuration.
func New(registry *rules.Registry, concurrentJobs int, maxFileSize int64, logger hclog.Logger) *Scanner {
	if concurrentJobs <= 0 {
		concurrentJobs = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{
		registry:       registry,
		concurrentJobs: concurrentJobs,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// ScanSource checks source text that is already in memory. The error is only set
// when ctx ends during the scan; every other failure marks the file skipped.
func (s *Scanner) ScanSource(ctx context.Context, path string, source []byte) (FileResult, error) {
	doc, err := markup.Parse(ctx, path, source)
	result := FileResult{Path: path, Kind: doc.Kind, Elements: len(doc.Elements)}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	switch {
	case err != nil && errors.Is(err, markup.ErrParse):
		s.logger.Debug("parse failed, skipping file", "path", path, "error", err)
		return result.skip(ReasonParse), nil
	case err != nil:
		s.logger.Debug("unsupported file, skipping", "path", path, "error", err)
		return result.skip(err.Error()), nil
	case len(doc.Elements) == 0:
		return result.skip(ReasonNoMarkup), nil
	}

	result.Issues = Check(s.registry, doc)
	return result, nil
}

// ScanFile reads and checks a single file. Read failures mark the file skipped.
func (s *Scanner) ScanFile(ctx context.Context, path string) (FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("cannot stat file", "path", path, "error", err)
		return FileResult{Path: path, Kind: markup.KindFromPath(path)}.skip(ReasonUnreadable), nil
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		s.logger.Debug("file too large, skipping", "path", path, "size", info.Size(), "limit", s.maxFileSize)
		return FileResult{Path: path, Kind: markup.KindFromPath(path)}.skip(ReasonTooLarge), nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("cannot read file", "path", path, "error", err)
		return FileResult{Path: path, Kind: markup.KindFromPath(path)}.skip(ReasonUnreadable), nil
	}
	return s.ScanSource(ctx, path, source)
}

// ScanFiles checks files with bounded parallelism. Results keep the order of paths.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	s.logger.Info("scan starting", "files", len(paths), "goroutines", s.concurrentJobs, "rules", s.registry.Len())

	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.concurrentJobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ScanFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	totals := Summarize(results)
	s.logger.Info("scan finished", "files", totals.Files, "skipped", totals.Skipped, "errors", totals.Errors, "warnings", totals.Warnings)
	return results, nil
}

// Summarize counts files and issues across results.
func Summarize(results []FileResult) Totals {
	var t Totals
	for _, r := range results {
		t.Files++
		if r.Skipped {
			t.Skipped++
			continue
		}
		t.Errors += issues.Count(r.Issues, issues.SeverityError)
		t.Warnings += issues.Count(r.Issues, issues.SeverityWarning)
	}
	return t
}

// WithIssues returns the files that have at least one issue, in result order.
func WithIssues(results []FileResult) []issues.File {
	var out []issues.File
	for _, r := range results {
		if len(r.Issues) > 0 {
			out = append(out, issues.File{Path: r.Path, Issues: r.Issues})
		}
	}
	return out
}

func (r FileResult) skip(reason string) FileResult {
	r.Skipped = true
	r.Reason = reason
	r.Issues = nil
	return r
}
