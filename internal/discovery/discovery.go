package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/a11yscan/internal/markup"
)

var ErrUnsupportedExtension = errors.New("extension has no markup backend")

// DefaultExcludeDirs are dependency, build and tool folders that never hold sources worth scanning.
var DefaultExcludeDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "bower_components", "vendor",
	"dist", "build", "out", "coverage",
	".next", ".nuxt", ".cache", ".turbo",
}

// Options controls which files are discovered.
type Options struct {
	Extensions       []string // defaults to every supported extension
	ExcludeDirs      []string // added to DefaultExcludeDirs
	RespectGitignore bool
}

// Finder lists the markup files below a set of roots.
type Finder struct {
	extensions  map[string]bool
	excludeDirs map[string]bool
	gitignore   bool
	logger      hclog.Logger
}

// New creates a finder. Extensions without a markup backend are rejected.
func New(opts Options, logger hclog.Logger) (*Finder, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = markup.SupportedExtensions()
	}

	f := &Finder{
		extensions:  make(map[string]bool, len(exts)),
		excludeDirs: make(map[string]bool, len(DefaultExcludeDirs)+len(opts.ExcludeDirs)),
		gitignore:   opts.RespectGitignore,
		logger:      logger,
	}
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if markup.KindFromPath("f"+ext) == markup.KindUnknown {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
		}
		f.extensions[ext] = true
	}
	for _, dir := range append(append([]string{}, DefaultExcludeDirs...), opts.ExcludeDirs...) {
		f.excludeDirs[dir] = true
	}
	return f, nil
}

// Find walks the roots in order and returns the supported files in lexical order per root.
// A root that is a file is returned as is when its extension is supported. Files reachable
// from more than one root are listed once.
func (f *Finder) Find(ctx context.Context, roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", root, err)
		}
		if !info.IsDir() {
			if f.supported(root) {
				add(root)
			} else {
				f.logger.Warn("skipping file with unsupported extension", "path", root)
			}
			continue
		}

		ignored := f.ignoreMatcher(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				f.logger.Warn("cannot read path, skipping", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == root {
				return nil
			}

			parts := relParts(root, path)
			if d.IsDir() {
				if f.excludeDirs[d.Name()] || ignored(parts, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if f.supported(path) && !ignored(parts, false) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", root, err)
		}
	}

	f.logger.Debug("discovery finished", "roots", len(roots), "files", len(out))
	return out, nil
}

// Filter keeps the paths below root that Find would have returned for root.
func (f *Finder) Filter(root string, paths []string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	ignored := f.ignoreMatcher(absRoot)

	var out []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil || !f.supported(abs) {
			continue
		}
		if abs == absRoot {
			out = append(out, path)
			continue
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if f.inExcludedDir(parts) || ignored(parts, false) {
			continue
		}
		out = append(out, path)
	}
	return out
}

// Supported reports whether a path has one of the configured extensions.
func (f *Finder) Supported(path string) bool {
	return f.supported(path)
}

// ExcludedDir reports whether a directory name is never descended into.
func (f *Finder) ExcludedDir(name string) bool {
	return f.excludeDirs[name]
}

func (f *Finder) supported(path string) bool {
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

func (f *Finder) inExcludedDir(parts []string) bool {
	for i := 0; i < len(parts)-1; i++ {
		if f.excludeDirs[parts[i]] {
			return true
		}
	}
	return false
}

// ignoreMatcher reads every .gitignore below root. Unreadable patterns ignore nothing.
func (f *Finder) ignoreMatcher(root string) func(parts []string, isDir bool) bool {
	none := func([]string, bool) bool { return false }
	if !f.gitignore {
		return none
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		f.logger.Warn("failed to read .gitignore patterns", "root", root, "error", err)
		return none
	}
	if len(patterns) == 0 {
		return none
	}
	matcher := gitignore.NewMatcher(patterns)
	return func(parts []string, isDir bool) bool {
		for i := 1; i < len(parts); i++ {
			if matcher.Match(parts[:i], true) {
				return true
			}
		}
		return matcher.Match(parts, isDir)
	}
}

func relParts(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return []string{filepath.Base(path)}
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
