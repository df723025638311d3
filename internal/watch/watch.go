// Package watch rebuilds the site whenever the package source changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 2 * time.Second

// RebuildFunc runs one full site generation.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors a package source tree and triggers debounced rebuilds.
type Watcher struct {
	dir      string
	debounce time.Duration
	rebuild  RebuildFunc
}

// New creates a watcher over dir with the default debounce interval.
func New(dir string, rebuild RebuildFunc) *Watcher {
	return &Watcher{dir: dir, debounce: defaultDebounce, rebuild: rebuild}
}

// SetDebounce overrides the debounce interval (tests use a short one).
func (w *Watcher) SetDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run watches until the context is canceled. Filesystem events collapse into
// one rebuild per quiet period; rebuild failures are logged, not fatal, so a
// broken edit does not kill the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, w.dir); err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(w.dir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories must be watched too.
				_ = addRecursive(fw, ev.Name)
			}
			slog.Debug("Source change detected", logfields.Path(ev.Name))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			slog.Info("Rebuilding after source change", logfields.Path(w.dir))
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// addRecursive registers dir and every subdirectory below it. Non-directories
// are ignored; fsnotify watches directory contents.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may already be gone again; skip rather than fail.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
