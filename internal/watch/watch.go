// pattern: Imperative Shell

// Package watch re-runs a scan whenever Gradle marker files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"gradleusage/internal/discovery"
	"gradleusage/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before running again.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc performs one scan and returns the directories to watch until the
// next one, typically the scan roots plus every discovered project root.
type RunFunc func(ctx context.Context) ([]string, error)

// Watcher drives repeated scans from filesystem events.
type Watcher struct {
	logger   *logging.ScopedLogger
	debounce time.Duration
}

// New creates a Watcher. A zero debounce selects DefaultDebounce.
func New(logger *logging.ScopedLogger, debounce time.Duration) *Watcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{logger: logger, debounce: debounce}
}

// Run calls fn once, then again after every settled burst of relevant events
// in the directories fn returned. The watch set is replaced after each call.
//
// An error from the first call is returned; later failures are logged and
// watching continues. Run returns ctx.Err() once ctx is done.
func (w *Watcher) Run(ctx context.Context, fn RunFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	dirs, err := fn(ctx)
	if err != nil {
		return err
	}
	watched := make(map[string]bool)
	w.sync(fsw, watched, dirs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			dirs, err := fn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("scan failed", "error", err)
				continue
			}
			w.sync(fsw, watched, dirs)
		}
	}
}

// sync makes the watch set equal to dirs plus the wrapper directory of each
// dir that has one.
func (w *Watcher) sync(fsw *fsnotify.Watcher, watched map[string]bool, dirs []string) {
	want := make(map[string]bool, len(dirs)*2)
	for _, dir := range dirs {
		want[dir] = true
		wrapperDir := filepath.Join(dir, filepath.Dir(discovery.WrapperProperties))
		if info, err := os.Stat(wrapperDir); err == nil && info.IsDir() {
			want[wrapperDir] = true
		}
	}

	for dir := range watched {
		if !want[dir] {
			_ = fsw.Remove(dir)
			delete(watched, dir)
		}
	}
	for dir := range want {
		if watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.logger.Debug("cannot watch directory", "path", dir, "error", err)
			continue
		}
		watched[dir] = true
	}
	w.logger.Info("watching directories", "count", len(watched))
}

// relevant reports whether event can change a scan result: entries appearing
// or disappearing in a watched directory, or a marker file being written.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if event.Has(fsnotify.Write) {
		return slices.Contains(markerNames(), filepath.Base(event.Name))
	}
	return false
}

func markerNames() []string {
	names := make([]string, 0, 3)
	for _, m := range discovery.Markers() {
		names = append(names, filepath.Base(m))
	}
	return names
}
