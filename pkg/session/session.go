package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/buildserver"
)

// Info is the read-only context of one editing session.
type Info struct {
	SessionID     string `json:"sessionId"`
	WorkspacePath string `json:"workspacePath"`
	SessionPath   string `json:"sessionPath"`

	// BundleReady is nil until the first build result arrives.
	BundleReady *bool  `json:"bundleReady,omitempty"`
	BundleError string `json:"bundleError,omitempty"`
}

// BundleFailed reports whether the last build of the session failed.
func (i Info) BundleFailed() bool {
	return i.BundleReady != nil && !*i.BundleReady
}

// withBuild returns a copy of i carrying the build result.
func (i Info) withBuild(success bool, buildErr string) Info {
	ready := success
	i.BundleReady = &ready
	i.BundleError = ""
	if !success {
		i.BundleError = buildErr
		if i.BundleError == "" {
			i.BundleError = "build failed"
		}
	}
	return i
}

// Local returns an Info for a workspace directory that is not managed by a
// build server. The session id is random.
func Local(workspaceDir string) Info {
	return Info{
		SessionID:     "local-" + uuid.NewString(),
		WorkspacePath: workspaceDir,
		SessionPath:   workspaceDir,
	}
}

// Initializer creates sessions. *buildserver.Client implements it.
type Initializer interface {
	InitSession(ctx context.Context, forceNew bool) (buildserver.SessionInit, error)
}

// Owner holds the current session. It is safe for concurrent use.
type Owner struct {
	init    Initializer
	logger  *slog.Logger
	current atomic.Pointer[Info]

	// initMu serializes session creation.
	initMu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[int]func(Info)
	nextID      int
}

// Option configures an Owner.
type Option func(*Owner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Owner) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOwner creates an Owner. init may be nil when sessions are only set
// with Set.
func NewOwner(init Initializer, opts ...Option) *Owner {
	o := &Owner{
		init:      init,
		logger:    slog.Default(),
		listeners: make(map[int]func(Info)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "session")
	return o
}

// Init joins the build server's current session, creating one if needed.
func (o *Owner) Init(ctx context.Context) (Info, error) {
	return o.start(ctx, false)
}

// NewSession discards the current session and starts a fresh one.
func (o *Owner) NewSession(ctx context.Context) (Info, error) {
	return o.start(ctx, true)
}

func (o *Owner) start(ctx context.Context, forceNew bool) (Info, error) {
	if o.init == nil {
		return Info{}, errors.New("E211").WithDetail("no build server configured")
	}

	o.initMu.Lock()
	defer o.initMu.Unlock()

	res, err := o.init.InitSession(ctx, forceNew)
	if err != nil {
		o.logger.Error("session init failed", "force_new", forceNew, "error", err)
		return Info{}, err
	}

	info := Info{
		SessionID:     res.SessionID,
		WorkspacePath: res.WorkspacePath,
		SessionPath:   res.SessionPath,
	}
	o.Set(info)
	o.logger.Info("session started",
		"session_id", info.SessionID,
		"workspace", info.WorkspacePath,
		"force_new", forceNew,
	)
	return info, nil
}

// Set replaces the current session.
func (o *Owner) Set(info Info) {
	stored := info
	o.current.Store(&stored)
	o.notify(stored)
}

// Current returns the current session.
func (o *Owner) Current() (Info, bool) {
	p := o.current.Load()
	if p == nil {
		return Info{}, false
	}
	return *p, true
}

// ApplyBuild records a build result for sessionID. An empty sessionID
// refers to the current session. Results for other sessions are ignored;
// ApplyBuild reports whether the current session was replaced.
func (o *Owner) ApplyBuild(sessionID string, success bool, buildErr string) bool {
	for {
		old := o.current.Load()
		if old == nil {
			return false
		}
		if sessionID != "" && sessionID != old.SessionID {
			o.logger.Debug("ignoring build result for other session",
				"session_id", sessionID,
				"current", old.SessionID,
			)
			return false
		}
		next := old.withBuild(success, buildErr)
		if o.current.CompareAndSwap(old, &next) {
			o.notify(next)
			return true
		}
	}
}

// Subscribe calls fn with every new Info. The returned function
// unsubscribes.
func (o *Owner) Subscribe(fn func(Info)) func() {
	o.listenersMu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.listenersMu.Unlock()

	return func() {
		o.listenersMu.Lock()
		delete(o.listeners, id)
		o.listenersMu.Unlock()
	}
}

func (o *Owner) notify(info Info) {
	o.listenersMu.Lock()
	fns := make([]func(Info), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.listenersMu.Unlock()

	for _, fn := range fns {
		fn(info)
	}
}
