package editor

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestWatcherIgnored(t *testing.T) {
	root := t.TempDir()
	w := NewWorkspaceWatcher(root, WithIgnore("generated/api", "*.snap"))

	tests := []struct {
		path string
		want bool
	}{
		{"App.js", false},
		{"components/Button.js", false},
		{"node_modules/react/index.js", true},
		{".git/HEAD", true},
		{"src/.DS_Store", true},
		{"notes.tmp", true},
		{"Button.js.swp", true},
		{"src/generated/api/client.js", true},
		{"src/generated/types.js", false},
		{"__snapshots__/App.test.js.snap", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := w.ignored(filepath.Join(root, filepath.FromSlash(tt.path))); got != tt.want {
				t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatcherBatchesChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/lib/index.js", "x")
	writeFile(t, root, "components/Button.js", "x")

	w := NewWorkspaceWatcher(root, WithDebounce(50*time.Millisecond), WithWatcherLogger(quiet))
	batches := make(chan []string, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b []string) { batches <- b }) }()

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}

	writeFile(t, root, "node_modules/lib/index.js", "y")
	writeFile(t, root, "App.js", "a")
	writeFile(t, root, "components/Button.js", "b")

	var seen []string
	deadline := time.After(5 * time.Second)
	for !slices.Contains(seen, "App.js") || !slices.Contains(seen, "components/Button.js") {
		select {
		case b := <-batches:
			if !slices.IsSorted(b) {
				t.Errorf("batch not sorted: %v", b)
			}
			seen = append(seen, b...)
		case <-deadline:
			t.Fatalf("changes not reported, seen %v", seen)
		}
	}
	for _, p := range seen {
		if filepath.Dir(p) == "node_modules/lib" {
			t.Errorf("ignored path reported: %s", p)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := NewWorkspaceWatcher(root, WithDebounce(30*time.Millisecond), WithWatcherLogger(quiet))
	batches := make(chan []string, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(b []string) { batches <- b })
	<-w.Ready()

	if err := os.Mkdir(filepath.Join(root, "screens"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to add the new directory before writing into it.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "screens/Home.js", "x")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-batches:
			if slices.Contains(b, "screens/Home.js") {
				return
			}
		case <-deadline:
			t.Fatal("file in new directory not reported")
		}
	}
}
