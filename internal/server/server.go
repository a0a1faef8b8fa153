package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/editor"
	"github.com/vango-dev/studio/pkg/preview"
	"github.com/vango-dev/studio/pkg/session"
)

const (
	// EventState is sent to a host UI when it connects, carrying the
	// renderer state.
	EventState = "studio:state"

	// EventSession carries the session.Info whenever the session is
	// replaced or its build status changes.
	EventSession = "studio:session"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server serves the studio API for one Editor.
type Server struct {
	editor   *editor.Editor
	hub      *Hub
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	router   chi.Router

	unsubscribe        func()
	unsubscribeSession func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request metrics in m and serves g on /metrics.
func WithMetrics(m *telemetry.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a server for ed and subscribes its hub to ed's host events.
func New(ed *editor.Editor, opts ...Option) *Server {
	s := &Server{
		editor: ed,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.hub = NewHub(s.logger, s.metrics)
	s.hub.welcome = func() []preview.Event {
		return []preview.Event{{Type: EventState, Detail: ed.Renderer().State()}}
	}
	s.unsubscribe = ed.Events().Subscribe(s.hub.Broadcast)
	s.unsubscribeSession = ed.Sessions().Subscribe(func(info session.Info) {
		s.hub.Broadcast(preview.Event{Type: EventSession, Detail: info})
	})

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(instrument(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/preview", s.handlePreview)
	r.Get("/_studio/events", s.hub.HandleWebSocket)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/components", s.handleComponents)
		r.Post("/components/scan", s.handleScan)

		r.Get("/session", s.handleSession)
		r.Post("/session/new", s.handleNewSession)

		r.Get("/zones", s.handleZones)
		r.Put("/surface/bounds", s.handleSurfaceBounds)
		r.Post("/drag/start", s.handleDragStart)
		r.Post("/drag/move", s.handleDragMove)
		r.Post("/drag/drop", s.handleDrop)
		r.Post("/drag/end", s.handleDragEnd)

		r.Get("/render/state", s.handleRenderState)
		r.Post("/render/app", s.handleRenderApp)
		r.Post("/render/component/*", s.handleRenderComponent)
		r.Post("/render/clear", s.handleRenderClear)
		r.Post("/render/reload", s.handleRenderReload)

		r.Get("/inspect/*", s.handleInspect)

		r.Put("/files/*", s.handleWriteFile)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the host event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close detaches the hub from the editor and disconnects host UIs.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.unsubscribeSession != nil {
		s.unsubscribeSession()
		s.unsubscribeSession = nil
	}
	s.hub.Close()
}
