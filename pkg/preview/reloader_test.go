package preview

import (
	"context"
	"sync"
	"testing"
	"time"
)

// blockingTarget records reloads and can hold each one until released.
type blockingTarget struct {
	mu      sync.Mutex
	mode    Mode
	reloads int
	started chan struct{}
	release chan struct{}
}

func (b *blockingTarget) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

func (b *blockingTarget) Pending() bool { return b.Mode() != ModeIdle }

func (b *blockingTarget) Reload(ctx context.Context) error {
	b.mu.Lock()
	b.reloads++
	b.mu.Unlock()
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	return nil
}

func (b *blockingTarget) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloads
}

func TestReloaderCoalesces(t *testing.T) {
	target := &blockingTarget{
		mode:    ModeApp,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	events := NewEvents()
	var mu sync.Mutex
	var files []string
	events.Subscribe(func(ev Event) {
		if ev.Type == EventAppReload {
			mu.Lock()
			files = append(files, ev.Detail.(AppReloadDetail).FilePath)
			mu.Unlock()
		}
	})

	r := NewReloader(target, WithReloadEvents(events))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Notify(Notice{FilePath: "a.js"})
	select {
	case <-target.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first reload never started")
	}

	// Arrive while the first reload is in flight.
	r.Notify(Notice{FilePath: "b.js"})
	r.Notify(Notice{FilePath: "c.js"})
	r.Notify(Notice{FilePath: "d.js"})

	close(target.release)
	r.Wait()

	if got := target.count(); got != 2 {
		t.Errorf("reloads = %d, want 2", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(files) != 2 || files[0] != "a.js" || files[1] != "d.js" {
		t.Errorf("applied notices = %v, want [a.js d.js]", files)
	}
	if r.Processed() != 2 {
		t.Errorf("Processed = %d", r.Processed())
	}
}

func TestReloaderSkipsIdle(t *testing.T) {
	target := &blockingTarget{mode: ModeIdle}
	r := NewReloader(target)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Notify(Notice{FilePath: "a.js"})
	r.Wait()
	if target.count() != 0 {
		t.Errorf("idle target reloaded %d times", target.count())
	}
}

func TestReloaderWithRenderer(t *testing.T) {
	rd, _, _, _ := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rd.RenderComponent(ctx, "cards/ServiceCard", map[string]any{"x": 1}); err != nil {
		t.Fatal(err)
	}
	mount := rd.State().MountID

	r := NewReloader(rd)
	go r.Run(ctx)
	r.Notify(Notice{FilePath: "src/cards/ServiceCard.js", Timestamp: 42})
	r.Wait()

	s := rd.State()
	if s.Mode != ModeComponent || s.MountID == mount || s.Props["x"] != 1 {
		t.Errorf("state after hot reload = %+v", s)
	}
}

func TestReloaderStopsOnCancel(t *testing.T) {
	r := NewReloader(&blockingTarget{mode: ModeApp})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestReloaderDuringFirstLoad(t *testing.T) {
	rd, ld, _, _ := newTestRenderer(t)
	ld.gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan error, 1)
	go func() { first <- rd.RenderApp(ctx) }()
	waitCalls(t, ld, 1)
	if !rd.Pending() || rd.Mode() != ModeIdle {
		t.Fatalf("pending=%v mode=%v while loading", rd.Pending(), rd.Mode())
	}

	r := NewReloader(rd)
	go r.Run(ctx)
	r.Notify(Notice{FilePath: "App.js"})
	waitCalls(t, ld, 2)

	close(ld.gate)
	r.Wait()
	<-first

	if got := rd.Mode(); got != ModeApp {
		t.Errorf("mode = %v, want app", got)
	}
	if r.Processed() != 1 {
		t.Errorf("Processed = %d, want 1", r.Processed())
	}
}

func TestRendererPendingClearedByClear(t *testing.T) {
	rd, _, _, _ := newTestRenderer(t)
	if rd.Pending() {
		t.Fatal("new renderer is pending")
	}
	if err := rd.RenderApp(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !rd.Pending() {
		t.Error("not pending after RenderApp")
	}
	rd.Clear()
	if rd.Pending() {
		t.Error("pending after Clear")
	}
}

func waitCalls(t *testing.T, ld *stubLoader, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ld.mu.Lock()
		calls := ld.calls
		ld.mu.Unlock()
		if calls >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("loader never reached %d calls", n)
}
