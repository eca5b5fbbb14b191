package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/discovery"
	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/git"
	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/internal/rules"
	"github.com/scan-io-git/a11yscan/pkg/shared/files"
)

// ScanOptions are the inputs shared by every command that scans.
type ScanOptions struct {
	Roots   []string
	Rules   string
	Threads int
	Changed bool
	Base    string
}

// Pipeline discovers files and scans them with the selected rules.
type Pipeline struct {
	Registry *rules.Registry
	Finder   *discovery.Finder
	Scanner  *engine.Scanner
	options  ScanOptions
	logger   hclog.Logger
}

// NewPipeline wires discovery, rule selection and the scanner from configuration and flags.
func NewPipeline(cfg *config.Config, opts ScanOptions, logger hclog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}
	reg, err := BuildRegistry(cfg, opts.Rules)
	if err != nil {
		return nil, err
	}
	finder, err := discovery.New(discovery.Options{
		Extensions:       cfg.Scan.Extensions,
		ExcludeDirs:      cfg.Scan.ExcludeDirs,
		RespectGitignore: config.GetRespectGitignore(cfg),
	}, logger)
	if err != nil {
		return nil, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = config.GetJobs(cfg)
	}

	return &Pipeline{
		Registry: reg,
		Finder:   finder,
		Scanner:  engine.New(reg, threads, config.GetMaxFileSize(cfg), logger),
		options:  opts,
		logger:   logger,
	}, nil
}

// Roots returns the scan roots.
func (p *Pipeline) Roots() []string {
	return p.options.Roots
}

// Targets lists the files to scan in a stable order.
func (p *Pipeline) Targets(ctx context.Context) ([]string, error) {
	mode := DetermineMode(p.options.Changed, p.options.Base)
	if mode == ModeAll {
		return p.Finder.Find(ctx, p.options.Roots)
	}

	seen := make(map[string]bool)
	var out []string
	for _, root := range p.options.Roots {
		changed, err := git.ChangedFiles(root, p.options.Base)
		if err != nil {
			return nil, fmt.Errorf("failed to list changed files: %w", err)
		}
		for _, path := range p.Finder.Filter(root, changed) {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	p.logger.Debug("changed files selected", "files", len(out), "base", p.options.Base)
	return out, nil
}

// Run discovers and scans the targets.
func (p *Pipeline) Run(ctx context.Context) ([]engine.FileResult, error) {
	targets, err := p.Targets(ctx)
	if err != nil {
		return nil, err
	}
	return p.Scanner.ScanFiles(ctx, targets)
}

// Report wraps results with run metadata. Paths are shown relative to the working directory.
// Only the html format prints the timestamp.
func (p *Pipeline) Report(results []engine.FileResult, version string) *report.Report {
	base, _ := os.Getwd()
	meta := report.Metadata{
		Tool:    "a11yscan",
		Version: version,
		BaseDir: base,
		Time:    time.Now(),
	}
	if md, err := git.CollectMetadata(p.options.Roots[0]); err == nil {
		meta.Repository = md.RepositoryURL
		meta.Branch = md.Branch
		meta.Revision = md.Commit
	} else {
		p.logger.Debug("no repository metadata", "root", p.options.Roots[0], "error", err)
	}
	return report.New(meta, results, p.Registry.Rules())
}

// WriteReport renders the report to outputPath, or to stdout when outputPath is empty.
// A folder as outputPath receives a11yscan.<format>.
func WriteReport(stdout io.Writer, format report.Format, outputPath string, rep *report.Report) error {
	if outputPath == "" {
		return report.Write(stdout, format, rep, report.ColorEnabled(stdout))
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep, false); err != nil {
		return err
	}
	path, _, err := files.DetermineFileFullPath(outputPath, "a11yscan."+string(format))
	if err != nil {
		return err
	}
	if err := files.WriteFile(filepath.Clean(path), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// CountFailing returns how many issues are at or above the threshold.
func CountFailing(results []engine.FileResult, threshold issues.Severity) int {
	n := 0
	for _, r := range results {
		n += issues.CountAtLeast(r.Issues, threshold)
	}
	return n
}
