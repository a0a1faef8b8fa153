package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/studio/internal/telemetry"
)

// Reloadable replays its current render. *Renderer implements it.
type Reloadable interface {
	Reload(ctx context.Context) error

	// Pending reports whether a render has been requested since the last
	// clear, mounted or still loading.
	Pending() bool
}

// Notice is a workspace change notification.
type Notice struct {
	SessionID string
	FilePath  string

	// Timestamp is in milliseconds since the epoch.
	Timestamp int64
}

// Reloader coalesces change notices into reloads of a Reloadable. Notices
// are handled in arrival order by a single worker; while a reload runs,
// only the newest pending notice is kept.
type Reloader struct {
	target  Reloadable
	events  *Events
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	pending *Notice
	signal  chan struct{}

	// processed counts applied reloads; read by Processed.
	processed uint64
	idle      *sync.Cond
	busy      bool
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithReloadEvents emits fileWatcher:appReload for each applied notice.
func WithReloadEvents(e *Events) ReloaderOption {
	return func(r *Reloader) { r.events = e }
}

// WithReloadLogger sets the logger.
func WithReloadLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReloadMetrics records reload dispositions.
func WithReloadMetrics(m *telemetry.Metrics) ReloaderOption {
	return func(r *Reloader) { r.metrics = m }
}

// NewReloader creates a reloader for target. Run must be called for
// notices to take effect.
func NewReloader(target Reloadable, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		target: target,
		signal: make(chan struct{}, 1),
		logger: slog.Default(),
	}
	r.idle = sync.NewCond(&r.mu)
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reloader")
	return r
}

// Notify queues n, replacing any notice still pending. It never blocks.
func (r *Reloader) Notify(n Notice) {
	if n.Timestamp == 0 {
		n.Timestamp = time.Now().UnixMilli()
	}

	r.mu.Lock()
	if r.pending != nil {
		r.metrics.RecordReload("coalesced")
		r.logger.Debug("coalescing reload", "dropped", r.pending.FilePath, "kept", n.FilePath)
	}
	r.pending = &n
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Run processes notices until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.signal:
		}

		r.mu.Lock()
		n := r.pending
		r.pending = nil
		r.busy = n != nil
		r.mu.Unlock()

		if n != nil {
			r.apply(ctx, *n)
		}

		r.mu.Lock()
		r.busy = false
		if n != nil {
			r.processed++
		}
		r.idle.Broadcast()
		r.mu.Unlock()
	}
}

func (r *Reloader) apply(ctx context.Context, n Notice) {
	if !r.target.Pending() {
		r.metrics.RecordReload("skipped")
		r.logger.Debug("nothing requested, skipping reload", "file", n.FilePath)
		return
	}

	r.events.Emit(Event{Type: EventAppReload, Detail: AppReloadDetail{
		FilePath:  n.FilePath,
		Timestamp: n.Timestamp,
	}})

	start := time.Now()
	err := r.target.Reload(ctx)
	r.metrics.RecordReload("applied")
	if err != nil {
		r.logger.Warn("reload failed", "file", n.FilePath, "error", err)
		return
	}
	r.logger.Info("hot reloaded", "file", n.FilePath, "duration", time.Since(start))
}

// Processed returns the number of notices handled by Run.
func (r *Reloader) Processed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed
}

// Wait blocks until no notice is pending or being handled.
func (r *Reloader) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pending != nil || r.busy {
		r.idle.Wait()
	}
}
