package preview

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/loader"
	"github.com/vango-dev/studio/pkg/session"
)

// AppLoader loads the application. *loader.Chain implements it.
type AppLoader interface {
	Load(ctx context.Context) loader.Result
}

// Components looks up component metadata. *catalog.Registry implements it.
type Components interface {
	Get(id string) (catalog.Metadata, bool)
}

// Sessions gives access to the current session. *session.Owner
// implements it.
type Sessions interface {
	Current() (session.Info, bool)
}

// Renderer drives a Container through the preview state machine. It is
// safe for concurrent use.
type Renderer struct {
	container  *Container
	loader     AppLoader
	components Components
	factory    ComponentFactory
	sessions   Sessions
	events     *Events
	logger     *slog.Logger
	metrics    *telemetry.Metrics

	// seq issues request ids; the latest id is the only one allowed to
	// mount.
	seq atomic.Uint64

	// mu serializes mounting and guards state and last.
	mu    sync.Mutex
	state State
	last  request
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLoader sets the app loader.
func WithLoader(l AppLoader) Option {
	return func(r *Renderer) { r.loader = l }
}

// WithComponents sets the component lookup.
func WithComponents(c Components) Option {
	return func(r *Renderer) { r.components = c }
}

// WithFactory sets the source of real component output.
func WithFactory(f ComponentFactory) Option {
	return func(r *Renderer) { r.factory = f }
}

// WithSessions sets the session used in render events.
func WithSessions(s Sessions) Option {
	return func(r *Renderer) { r.sessions = s }
}

// WithEvents sets the host event bus.
func WithEvents(e *Events) Option {
	return func(r *Renderer) { r.events = e }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records render outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// NewRenderer creates a renderer for container, starting idle.
func NewRenderer(container *Container, opts ...Option) *Renderer {
	r := &Renderer{
		container: container,
		logger:    slog.Default(),
		state:     State{Mode: ModeIdle, UpdatedAt: time.Now()},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "renderer")
	return r
}

// Container returns the renderer's container.
func (r *Renderer) Container() *Container {
	return r.container
}

// State returns a snapshot of the current state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// begin records req as the latest request and returns its id.
func (r *Renderer) begin(req request) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.seq.Add(1)
	r.last = req
	return id
}

func (r *Renderer) current(id uint64) bool {
	return r.seq.Load() == id
}

func superseded(id uint64) error {
	return errors.New("E232").WithSource("request " + formatID(id))
}

// RenderApp loads the application and mounts it.
func (r *Renderer) RenderApp(ctx context.Context) error {
	return r.renderApp(ctx, r.begin(request{kind: requestApp}))
}

func (r *Renderer) renderApp(ctx context.Context, id uint64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "preview.render",
		attribute.String("studio.mode", ModeApp.String()),
		attribute.Int64("studio.request", int64(id)),
	)
	start := time.Now()
	defer func() { telemetry.EndSpan(span, err) }()

	var res loader.Result
	if r.loader == nil {
		res.Err = errors.New("E210").WithDetail("no app loader configured")
	} else {
		res = r.loader.Load(ctx)
	}

	if !r.current(id) {
		r.logger.Debug("discarding stale app load", "request", id)
		return superseded(id)
	}
	if !res.OK() {
		return r.fail(id, ModeApp, res.Err, start)
	}

	view := AppView{App: res.App}
	var ev *Event
	err = r.mount(id, view, start, func(s *State) {
		s.Tier = res.App.Tier
		ev = &Event{Type: EventRender, Detail: RenderDetail{
			Type:      ModeApp.String(),
			SessionID: r.sessionID(res.App.SessionID),
			IframeURL: res.App.URL,
		}}
	})
	if ev != nil {
		r.events.Emit(*ev)
	}
	return err
}

// RenderComponent mounts the component with the given id and props.
// Unknown ids put the renderer in error mode.
func (r *Renderer) RenderComponent(ctx context.Context, id string, props map[string]any) error {
	props = maps.Clone(props)
	if props == nil {
		props = map[string]any{}
	}
	return r.renderComponent(ctx, r.begin(request{kind: requestComponent, componentID: id, props: props}), id, props)
}

func (r *Renderer) renderComponent(ctx context.Context, reqID uint64, id string, props map[string]any) (err error) {
	_, span := telemetry.StartSpan(ctx, "preview.render",
		attribute.String("studio.mode", ModeComponent.String()),
		attribute.String("studio.component", id),
		attribute.Int64("studio.request", int64(reqID)),
	)
	start := time.Now()
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		meta catalog.Metadata
		ok   bool
	)
	if r.components != nil {
		meta, ok = r.components.Get(id)
	}
	if !ok {
		return r.failComponent(reqID, id, props,
			errors.New("E214").WithSource(id).
				WithSuggestion("Rescan the workspace to refresh the component catalogue"),
			start)
	}

	view := ComponentView{Meta: meta, Props: props}
	if r.factory != nil {
		if c, found := r.factory.Component(meta, props); found {
			view.Content = c
		}
	}

	var ev *Event
	err = r.mount(reqID, view, start, func(s *State) {
		s.Component = &meta
		s.Props = maps.Clone(props)
		ev = &Event{Type: EventRender, Detail: RenderDetail{
			Type:        ModeComponent.String(),
			SessionID:   r.sessionID(""),
			ComponentID: meta.ID,
		}}
	})
	if ev != nil {
		r.events.Emit(*ev)
	}
	return err
}

// mount installs view for request id, retrying once on a cleared
// container. A second failure moves to error mode. apply fills in the
// mode-specific state on success.
func (r *Renderer) mount(id uint64, view View, start time.Time, apply func(*State)) error {
	r.mu.Lock()

	if !r.current(id) {
		r.mu.Unlock()
		r.logger.Debug("discarding stale render", "request", id)
		return superseded(id)
	}

	m, err := r.container.Mount(view)
	if err != nil {
		r.logger.Warn("mount failed, retrying on cleared container",
			"mode", view.Mode(),
			"code", errors.Code(err),
			"error", err,
		)
		m, err = r.container.Mount(view)
	}
	if err != nil {
		r.mu.Unlock()
		return r.fail(id, view.Mode(), err, start)
	}

	next := State{
		Mode:      view.Mode(),
		MountID:   m.ID,
		Request:   id,
		UpdatedAt: time.Now(),
	}
	apply(&next)
	r.state = next
	r.mu.Unlock()

	r.metrics.RecordRender(view.Mode().String(), true, time.Since(start))
	r.logger.Info("rendered",
		"mode", view.Mode(),
		"mount", m.ID,
		"request", id,
		"duration", time.Since(start),
	)
	return nil
}

func (r *Renderer) failComponent(id uint64, componentID string, props map[string]any, err error, start time.Time) error {
	return r.failWith(id, ModeComponent, err, start, func(s *State) {
		s.Component = &catalog.Metadata{ID: componentID}
		s.Props = maps.Clone(props)
	})
}

func (r *Renderer) fail(id uint64, mode Mode, err error, start time.Time) error {
	return r.failWith(id, mode, err, start, nil)
}

// failWith moves to error mode and shows err. The returned error is err.
func (r *Renderer) failWith(id uint64, mode Mode, err error, start time.Time, apply func(*State)) error {
	if err == nil {
		err = errors.New("E230")
	}
	code := errors.Code(err)
	msg := err.Error()

	r.mu.Lock()
	if !r.current(id) {
		r.mu.Unlock()
		return superseded(id)
	}

	next := State{
		Mode:      ModeError,
		Request:   id,
		Error:     msg,
		ErrorCode: code,
		UpdatedAt: time.Now(),
	}
	if apply != nil {
		apply(&next)
	}
	if m, mountErr := r.container.Mount(ErrorView{Message: msg, Code: code}); mountErr == nil {
		next.MountID = m.ID
	}
	r.state = next
	r.mu.Unlock()

	r.metrics.RecordRender(mode.String(), false, time.Since(start))
	r.logger.Error("render failed",
		"mode", mode,
		"request", id,
		"code", code,
		"error", err,
	)
	r.events.Emit(Event{Type: EventError, Detail: ErrorDetail{Message: msg, Code: code}})
	return err
}

// Clear empties the container and returns to idle. In-flight requests are
// superseded.
func (r *Renderer) Clear() {
	r.mu.Lock()
	id := r.seq.Add(1)
	r.last = request{}
	r.container.Clear()
	r.state = State{Mode: ModeIdle, Request: id, UpdatedAt: time.Now()}
	r.mu.Unlock()

	r.logger.Debug("cleared", "request", id)
}

// Reload replays the latest request with its props. It does nothing when
// idle. In error mode the failed request is replayed.
func (r *Renderer) Reload(ctx context.Context) error {
	r.mu.Lock()
	req := r.last
	r.mu.Unlock()

	switch req.kind {
	case requestApp:
		return r.RenderApp(ctx)
	case requestComponent:
		return r.RenderComponent(ctx, req.componentID, req.props)
	default:
		return nil
	}
}

// Pending reports whether a render was requested since the renderer was
// created or last cleared. It is true while the first load is in flight,
// before anything is mounted.
func (r *Renderer) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.kind != requestNone
}

// Mode returns the current mode.
func (r *Renderer) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Mode
}

func (r *Renderer) sessionID(fallback string) string {
	if fallback != "" {
		return fallback
	}
	if r.sessions == nil {
		return ""
	}
	if info, ok := r.sessions.Current(); ok {
		return info.SessionID
	}
	return ""
}
