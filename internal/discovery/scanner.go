// pattern: Imperative Shell

package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gradleusage/internal/logging"
	"gradleusage/internal/pathmatch"
)

// Scanner walks directory trees looking for Gradle project roots.
type Scanner struct {
	logger *logging.ScopedLogger

	// OnFound, if set, is called for every project root as it is discovered.
	OnFound func(path string)
}

// NewScanner creates a new project scanner. A nil logger discards diagnostics.
func NewScanner(logger *logging.ScopedLogger) *Scanner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{logger: logger}
}

// ScanAll walks each root depth-first, pre-order, in the order given and
// returns every project root found, in discovery order.
//
// An excluded directory (root or descendant) is neither recorded nor entered.
// A project root is still descended into so nested builds are reported.
// Symlinked directories are entered only when followLinks is set. Every
// directory is visited at most once per call, so overlapping roots and
// directories reached through different link paths are reported once.
//
// A root that is missing or unreadable fails the whole scan with a *ScanError.
// Unreadable directories below a root are logged and skipped.
func (s *Scanner) ScanAll(ctx context.Context, roots []string, excludes *pathmatch.ExcludeSet, followLinks bool) ([]string, error) {
	w := &walker{
		scanner:     s,
		excludes:    excludes,
		followLinks: followLinks,
		visited:     make(map[string]bool),
	}

	for _, root := range roots {
		if err := w.walkRoot(ctx, root); err != nil {
			return nil, err
		}
	}
	return w.found, nil
}

type walker struct {
	scanner     *Scanner
	excludes    *pathmatch.ExcludeSet
	followLinks bool

	// visited holds every directory entered, keyed by its lexical path, or by
	// its canonical path when following links.
	visited map[string]bool
	found   []string
}

func (w *walker) walkRoot(ctx context.Context, root string) error {
	abs, err := pathmatch.Normalize(root, false)
	if err != nil {
		return &ScanError{Root: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return &ScanError{Root: root, Err: fmt.Errorf("not a directory")}
	}
	if _, err := os.ReadDir(abs); err != nil {
		return &ScanError{Root: root, Err: err}
	}

	return w.walk(ctx, abs)
}

func (w *walker) walk(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.excludes.Contains(dir) {
		w.scanner.logger.Debug("skipping excluded directory", "path", dir)
		return nil
	}

	key := dir
	if w.followLinks {
		canonical, err := filepath.EvalSymlinks(dir)
		if err != nil {
			w.scanner.logger.Warn("cannot resolve directory", "path", dir, "error", err)
			return nil
		}
		key = canonical
	}
	if w.visited[key] {
		w.scanner.logger.Debug("skipping already visited directory", "path", dir, "key", key)
		return nil
	}
	w.visited[key] = true

	if IsProjectRoot(dir) {
		w.found = append(w.found, dir)
		if w.scanner.OnFound != nil {
			w.scanner.OnFound(dir)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.scanner.logger.Warn("cannot read directory", "path", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if !w.isDir(entry, child) {
			continue
		}
		if err := w.walk(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// isDir reports whether entry should be descended into.
func (w *walker) isDir(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 || !w.followLinks {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		w.scanner.logger.Debug("dangling symlink", "path", path, "error", err)
		return false
	}
	return info.IsDir()
}
