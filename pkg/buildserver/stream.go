package buildserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
)

const (
	// DefaultMinBackoff is the first reconnect delay.
	DefaultMinBackoff = time.Second

	// DefaultMaxBackoff caps the reconnect delay.
	DefaultMaxBackoff = 30 * time.Second
)

// Handler receives decoded stream events, one at a time, in arrival order.
type Handler func(Event)

// Stream subscribes to the build server event socket.
type Stream struct {
	url        string
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
	metrics    *telemetry.Metrics

	mu        sync.Mutex
	connected bool
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(lo, hi time.Duration) StreamOption {
	return func(s *Stream) {
		if lo > 0 {
			s.minBackoff = lo
		}
		if hi >= s.minBackoff {
			s.maxBackoff = hi
		}
	}
}

// WithStreamLogger sets the logger.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(s *Stream) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreamMetrics records message and reconnect counts.
func WithStreamMetrics(m *telemetry.Metrics) StreamOption {
	return func(s *Stream) {
		s.metrics = m
	}
}

// NewStream creates a subscriber for the ws:// or wss:// URL.
func NewStream(url string, opts ...StreamOption) *Stream {
	s := &Stream{
		url:        url,
		dialer:     websocket.DefaultDialer,
		minBackoff: DefaultMinBackoff,
		maxBackoff: DefaultMaxBackoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "event-stream")
	return s
}

// Connected reports whether a socket is currently open.
func (s *Stream) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Stream) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// Run connects and delivers events to handle until ctx is cancelled. A lost
// or refused connection is retried after a delay that doubles from the
// minimum to the maximum backoff and resets once a connection succeeds.
// Run returns ctx.Err().
func (s *Stream) Run(ctx context.Context, handle Handler) error {
	delay := s.minBackoff
	first := true

	for {
		if !first {
			s.metrics.RecordStreamReconnect()
		}
		first = false

		connected, err := s.session(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = s.minBackoff
		}
		s.logger.Warn("event stream disconnected",
			"url", s.url,
			"error", err,
			"retry_in", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > s.maxBackoff {
			delay = s.maxBackoff
		}
	}
}

// session runs one connection until it fails. It reports whether the
// handshake succeeded.
func (s *Stream) session(ctx context.Context, handle Handler) (bool, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return false, errors.New("E243").Wrap(err).WithSource(s.url)
	}
	s.setConnected(true)
	s.logger.Info("event stream connected", "url", s.url)

	done := make(chan struct{})
	defer func() {
		close(done)
		conn.Close()
		s.setConnected(false)
	}()

	// Unblock ReadMessage on cancellation.
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, errors.New("E243").Wrap(err).WithSource(s.url)
		}

		ev, err := ParseEvent(data)
		if err != nil {
			s.logger.Debug("dropping invalid message", "error", err)
			s.metrics.RecordStreamMessage("invalid")
			continue
		}
		s.metrics.RecordStreamMessage(string(ev.Type))
		if !ev.Type.Known() {
			s.logger.Debug("ignoring unknown event", "type", ev.Type)
			continue
		}
		handle(ev)
	}
}
