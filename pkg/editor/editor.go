package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/studio/internal/config"
	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/buildserver"
	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/dropzone"
	"github.com/vango-dev/studio/pkg/loader"
	"github.com/vango-dev/studio/pkg/preview"
	"github.com/vango-dev/studio/pkg/session"
)

// Deps are the optional collaborators of an Editor. Zero fields are built
// from the configuration.
type Deps struct {
	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	// Events receives host events. Share it with the HTTP layer to
	// forward events to the host UI.
	Events *preview.Events

	// Client replaces the build server client built from the config.
	Client *buildserver.Client

	// Source replaces the component source.
	Source catalog.Source

	// Store replaces the original package store.
	Store loader.PackageStore

	// Factory supplies real output for known components.
	Factory preview.ComponentFactory
}

type lifecycle int

const (
	stateNew lifecycle = iota
	stateRunning
	stateDisposed
)

// Editor owns the services of one editing session.
type Editor struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics

	client    *buildserver.Client
	writer    fileWriter
	sessions  *session.Owner
	registry  *catalog.Registry
	scanner   *catalog.Scanner
	zones     *dropzone.Manager
	events    *preview.Events
	container *preview.Container
	chain     *loader.Chain
	renderer  *preview.Renderer
	reloader  *preview.Reloader
	surface   *Surface
	stream    *buildserver.Stream
	watcher   *WorkspaceWatcher

	// localCatalog is set when components come from the workspace
	// directory; workspace changes then refresh the catalog.
	localCatalog bool

	mu     sync.Mutex
	state  lifecycle
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds every service from cfg. Nothing runs until Init.
func New(cfg *config.Config, deps Deps) (*Editor, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Editor{
		cfg:     cfg,
		logger:  logger.With("component", "editor"),
		metrics: deps.Metrics,
		events:  deps.Events,
		runCtx:  context.Background(),
	}
	if e.events == nil {
		e.events = preview.NewEvents()
	}

	e.client = deps.Client
	if e.client == nil && cfg.BuildServerEnabled() {
		e.client = buildserver.New(cfg.BuildServer.URL,
			buildserver.WithTimeout(cfg.BuildServerTimeout()),
			buildserver.WithLogger(logger),
		)
	}

	var (
		initializer session.Initializer
		files       loader.FileReader
		previewURL  loader.URLFunc
	)
	workspace := cfg.WorkspacePath()
	if e.client != nil {
		initializer = e.client
		files = e.client
		e.writer = e.client
		previewURL = cfg.SessionPreviewURL
	} else if workspace != "" {
		local := workspaceFiles{store: loader.NewDirStore(workspace)}
		files = local
		e.writer = local
	}
	e.sessions = session.NewOwner(initializer, session.WithLogger(logger))

	source := deps.Source
	switch {
	case source != nil:
	case e.client != nil:
		source = catalog.NewServerSource(e.client)
	case workspace != "":
		source = catalog.NewDirSource(workspace)
		e.localCatalog = true
	default:
		source = noSource{}
	}
	e.registry = catalog.NewRegistry()
	e.scanner = catalog.NewScanner(source, e.registry,
		catalog.WithLogger(logger),
		catalog.WithMetrics(deps.Metrics),
	)

	store, err := originalStore(cfg, deps.Store)
	if err != nil {
		return nil, err
	}
	entry := cfg.Loader.EntryFile
	e.chain = loader.NewChain([]loader.Tier{
		&loader.SessionTier{Sessions: e.sessions, Files: files, Entry: entry, URL: previewURL},
		&loader.OriginalTier{Store: store, Entry: entry, URL: cfg.Loader.OriginalURL},
		&loader.PlaceholderTier{Sessions: e.sessions, Files: files, Store: store, Entry: entry},
	}, loader.WithLogger(logger), loader.WithMetrics(deps.Metrics))

	e.zones = dropzone.NewManager(dropzone.WithLogger(logger), dropzone.WithMetrics(deps.Metrics))
	e.container = preview.NewContainer(preview.WithContainerLogger(logger))
	e.renderer = preview.NewRenderer(e.container,
		preview.WithLoader(e.chain),
		preview.WithComponents(e.registry),
		preview.WithFactory(deps.Factory),
		preview.WithSessions(e.sessions),
		preview.WithEvents(e.events),
		preview.WithLogger(logger),
		preview.WithMetrics(deps.Metrics),
	)
	e.reloader = preview.NewReloader(e.renderer,
		preview.WithReloadEvents(e.events),
		preview.WithReloadLogger(logger),
		preview.WithReloadMetrics(deps.Metrics),
	)
	e.surface = NewSurface(e.renderer, e.zones,
		WithSize(cfg.Preview.Width, cfg.Preview.Height),
		WithAccepts(cfg.Preview.Accepts...),
		WithSurfaceLogger(logger),
	)

	if e.client != nil {
		e.stream = buildserver.NewStream(cfg.EventsURL(),
			buildserver.WithStreamLogger(logger),
			buildserver.WithStreamMetrics(deps.Metrics),
		)
	}
	if cfg.Workspace.Watch && workspace != "" {
		e.watcher = NewWorkspaceWatcher(workspace,
			WithIgnore(cfg.Workspace.Ignore...),
			WithDebounce(cfg.WorkspaceDebounce()),
			WithWatcherLogger(logger),
		)
	}

	return e, nil
}

func originalStore(cfg *config.Config, override loader.PackageStore) (loader.PackageStore, error) {
	if override != nil {
		return override, nil
	}
	if dir := cfg.OriginalPath(); dir != "" {
		return loader.NewDirStore(dir), nil
	}
	if s3cfg := cfg.Loader.Original.S3; s3cfg.Bucket != "" {
		store, err := loader.NewS3StoreFromRegion(context.Background(), s3cfg.Bucket, s3cfg.Prefix, s3cfg.Region)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}

// Init creates or joins the session, scans the catalog, mounts the
// surface, renders the application and starts the background workers.
// Session and render failures are logged; the editor still starts.
func (e *Editor) Init(ctx context.Context) error {
	e.mu.Lock()
	if e.state != stateNew {
		e.mu.Unlock()
		return errors.Newf(errors.CategoryMount, "editor already initialized")
	}
	e.state = stateRunning
	runCtx, cancel := context.WithCancel(ctx)
	e.runCtx = runCtx
	e.cancel = cancel
	e.mu.Unlock()

	e.startSession(ctx)

	n := e.scanner.Refresh(ctx)
	e.logger.Info("catalog ready", "components", n)

	e.surface.Mount(runCtx)

	if err := e.renderer.RenderApp(ctx); err != nil {
		e.logger.Warn("initial render failed", "code", errors.Code(err), "error", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.reloader.Run(runCtx)
	}()

	if e.stream != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.stream.Run(runCtx, e.HandleBuildEvent)
		}()
	}

	if e.watcher != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.watcher.Run(runCtx, e.workspaceChanged); err != nil && runCtx.Err() == nil {
				e.logger.Error("workspace watcher stopped", "code", errors.Code(err), "error", err)
			}
		}()
	}

	e.logger.Info("editor initialized",
		"buildServer", e.client != nil,
		"watch", e.watcher != nil,
		"hotReload", e.cfg.HotReloadEnabled(),
	)
	return nil
}

func (e *Editor) startSession(ctx context.Context) {
	if e.client == nil {
		if dir := e.cfg.WorkspacePath(); dir != "" {
			info := session.Local(dir)
			e.sessions.Set(info)
			e.logger.Info("using local workspace", "session", info.SessionID, "dir", dir)
		}
		return
	}
	info, err := e.sessions.Init(ctx)
	if err != nil {
		e.logger.Warn("session init failed, continuing without a session",
			"code", errors.Code(err),
			"error", err,
		)
		return
	}
	e.logger.Info("session ready", "session", info.SessionID)
}

// Dispose stops the workers, unregisters the drop zones and clears the
// preview. It is safe to call more than once.
func (e *Editor) Dispose() {
	e.mu.Lock()
	if e.state == stateDisposed {
		e.mu.Unlock()
		return
	}
	e.state = stateDisposed
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.surface.Unmount()
	e.zones.Reset()
	e.wg.Wait()
	e.renderer.Clear()
	e.container.Close()
	e.logger.Info("editor disposed")
}

// NewSession replaces the session, refreshes the catalog and renders the
// application of the new session.
func (e *Editor) NewSession(ctx context.Context) (session.Info, error) {
	var info session.Info
	if e.client == nil {
		dir := e.cfg.WorkspacePath()
		if dir == "" {
			return session.Info{}, errors.New("E211").WithDetail("no build server or workspace configured")
		}
		info = session.Local(dir)
		e.sessions.Set(info)
	} else {
		var err error
		info, err = e.sessions.NewSession(ctx)
		if err != nil {
			return session.Info{}, err
		}
	}

	e.logger.Info("new session", "session", info.SessionID)
	e.scanner.Refresh(ctx)
	if err := e.surface.ClearSelection(ctx); err != nil {
		e.logger.Warn("render after new session failed", "code", errors.Code(err), "error", err)
	}
	return info, nil
}

// WriteFile replaces path in the current session's workspace and queues a
// reload of the preview. Without a build server the file is written to
// the local workspace.
func (e *Editor) WriteFile(ctx context.Context, path, content string) error {
	if e.writer == nil {
		return errors.New("E211").WithDetail("no build server or workspace configured")
	}
	info, ok := e.sessions.Current()
	if !ok {
		return errors.New("E211").WithDetail("no active session")
	}
	if err := e.writer.WriteFile(ctx, info.SessionID, path, content); err != nil {
		return err
	}

	e.logger.Info("file written", "session", info.SessionID, "file", path, "bytes", len(content))
	if e.cfg.HotReloadEnabled() {
		e.reloader.Notify(preview.Notice{SessionID: info.SessionID, FilePath: path})
	}
	return nil
}

// Rescan refreshes the catalog and returns the component count.
func (e *Editor) Rescan(ctx context.Context) int {
	return e.scanner.Refresh(ctx)
}

func (e *Editor) workspaceChanged(files []string) {
	if len(files) == 0 {
		return
	}
	e.mu.Lock()
	ctx := e.runCtx
	e.mu.Unlock()

	if e.localCatalog {
		e.scanner.Refresh(ctx)
	}
	if !e.cfg.HotReloadEnabled() {
		return
	}
	info, _ := e.sessions.Current()
	e.reloader.Notify(preview.Notice{
		SessionID: info.SessionID,
		FilePath:  files[len(files)-1],
	})
}

// Config returns the configuration.
func (e *Editor) Config() *config.Config { return e.cfg }

// Client returns the build server client, or nil when disabled.
func (e *Editor) Client() *buildserver.Client { return e.client }

// Sessions returns the session owner.
func (e *Editor) Sessions() *session.Owner { return e.sessions }

// Registry returns the component registry.
func (e *Editor) Registry() *catalog.Registry { return e.registry }

// Zones returns the drop zone manager.
func (e *Editor) Zones() *dropzone.Manager { return e.zones }

// Events returns the host event bus.
func (e *Editor) Events() *preview.Events { return e.events }

// Loader returns the app loader chain.
func (e *Editor) Loader() *loader.Chain { return e.chain }

// Renderer returns the preview renderer.
func (e *Editor) Renderer() *preview.Renderer { return e.renderer }

// Reloader returns the hot reloader.
func (e *Editor) Reloader() *preview.Reloader { return e.reloader }

// Surface returns the phone surface.
func (e *Editor) Surface() *Surface { return e.surface }

// Stream returns the build server event stream, or nil when disabled.
func (e *Editor) Stream() *buildserver.Stream { return e.stream }

// Watcher returns the workspace watcher, or nil when not watching.
func (e *Editor) Watcher() *WorkspaceWatcher { return e.watcher }
