package editor

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/studio/internal/errors"
)

// DefaultIgnore contains patterns the workspace watcher never reports.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"coverage",
	".expo",
	".DS_Store",
	"*.tmp",
	"*.swp",
	"*~",
}

// WorkspaceWatcher reports changes under a local workspace directory in
// debounced batches.
type WorkspaceWatcher struct {
	root     string
	ignore   []string
	debounce time.Duration
	logger   *slog.Logger
	ready    chan struct{}
}

// WatcherOption configures a WorkspaceWatcher.
type WatcherOption func(*WorkspaceWatcher)

// WithIgnore adds patterns to DefaultIgnore. A pattern without a slash
// matches a base name (globs allowed) or any path segment; a pattern with
// a slash matches consecutive segments.
func WithIgnore(patterns ...string) WatcherOption {
	return func(w *WorkspaceWatcher) {
		w.ignore = append(w.ignore, patterns...)
	}
}

// WithDebounce sets the quiet period before a batch is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *WorkspaceWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *WorkspaceWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorkspaceWatcher creates a watcher for root.
func NewWorkspaceWatcher(root string, opts ...WatcherOption) *WorkspaceWatcher {
	w := &WorkspaceWatcher{
		root:     root,
		ignore:   slices.Clone(DefaultIgnore),
		debounce: 100 * time.Millisecond,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "workspace-watcher")
	return w
}

// Root returns the watched directory.
func (w *WorkspaceWatcher) Root() string {
	return w.root
}

// Ready is closed once Run has installed its watches.
func (w *WorkspaceWatcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Each batch passed to onChange holds
// the distinct changed paths, slash-separated and relative to the root,
// in sorted order. Run must be called at most once.
func (w *WorkspaceWatcher) Run(ctx context.Context, onChange func([]string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("E202").Wrap(err).WithSource(w.root)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	close(w.ready)
	w.logger.Info("watching workspace", "root", w.root, "debounce", w.debounce)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]struct{})
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

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
					}
				}
			}

			pending[w.rel(ev.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			clear(pending)
			slices.Sort(batch)

			w.logger.Debug("workspace changed", "files", batch)
			onChange(batch)
		}
	}
}

func (w *WorkspaceWatcher) addTree(fw *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
	if err != nil {
		return errors.New("E202").Wrap(err).WithSource(dir)
	}
	return nil
}

func (w *WorkspaceWatcher) rel(p string) string {
	r, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// ignored reports whether p, a path under the root, matches an ignore
// pattern.
func (w *WorkspaceWatcher) ignored(p string) bool {
	name := filepath.Base(p)
	normalized := w.rel(p)

	for _, pattern := range w.ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			if hasSep {
				if ok, _ := path.Match(pattern, normalized); ok {
					return true
				}
			} else if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
			continue
		}

		if hasSep {
			if matchesSegments(normalized, pattern) {
				return true
			}
			continue
		}
		if slices.Contains(splitSegments(normalized), pattern) {
			return true
		}
	}
	return false
}

func matchesSegments(p, pattern string) bool {
	parts := splitSegments(p)
	want := splitSegments(pattern)
	if len(want) == 0 || len(want) > len(parts) {
		return false
	}
	for i := 0; i <= len(parts)-len(want); i++ {
		if slices.Equal(parts[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
