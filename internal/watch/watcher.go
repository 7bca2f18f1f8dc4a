// Package watch re-runs a callback when files under a directory tree change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// ErrNoDirectory is returned when the watched root does not exist.
var ErrNoDirectory = errors.New("watch: root directory not found")

// Options configures a Watcher.
type Options struct {
	// Debounce groups bursts of events (editor saves, git checkouts) into a
	// single callback. Defaults to 300ms.
	Debounce time.Duration
	// Extensions limits events to matching files, e.g. ".md". Empty means all.
	Extensions []string
}

// Handler receives the sorted, de-duplicated paths that changed.
type Handler func(ctx context.Context, changed []string) error

// Watcher watches a directory tree recursively. fsnotify does not recurse,
// so new sub-directories are added as they appear.
type Watcher struct {
	root     string
	opts     Options
	logger   interfaces.Logger
	notifier *fsnotify.Watcher
}

// New creates a watcher rooted at root.
func New(root string, opts Options, logger interfaces.Logger) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoDirectory, root)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create notifier: %w", err)
	}
	w := &Watcher{root: root, opts: opts, logger: logging.Ensure(logger), notifier: notifier}
	if err := w.addTree(root); err != nil {
		notifier.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks, invoking handler after each debounced burst of changes, until
// ctx is cancelled or handler returns an error. The notifier is closed on
// return.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.notifier.Close()

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.notifier.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch.add_failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.opts.Debounce)
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			slices.Sort(changed)
			clear(pending)
			w.logger.Debug("watch.changed", "count", len(changed))
			if err := handler(ctx, changed); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	if len(w.opts.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.opts.Extensions, strings.ToLower(filepath.Ext(name)))
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.notifier.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}
