package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/a11yscan/internal/discovery"
)

// DefaultDebounce is how long the file system must stay quiet before a re-scan.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers a callback after bursts of changes to scannable files under a set of roots.
type Watcher struct {
	fs       *fsnotify.Watcher
	finder   *discovery.Finder
	roots    []string
	debounce time.Duration
	logger   hclog.Logger
}

// New starts watching every directory below roots that discovery would walk.
func New(roots []string, finder *discovery.Finder, debounce time.Duration, logger hclog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch init failed: %w", err)
	}

	w := &Watcher{fs: fw, finder: finder, roots: roots, debounce: debounce, logger: logger}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run blocks until ctx is done. trigger is called from the Run goroutine, so re-scans never overlap.
func (w *Watcher) Run(ctx context.Context, trigger func(ctx context.Context)) error {
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			trigger(ctx)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// relevant reports whether an event can change the scan result. New directories are watched as a side effect.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return true
		}
	}
	for _, root := range w.roots {
		if len(w.finder.Filter(root, []string{ev.Name})) > 0 {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", root, err)
	}
	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.finder.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		return nil
	})
}
