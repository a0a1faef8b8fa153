package preview

import (
	"log/slog"
	"sync"
)

// Host event types.
const (
	EventRender    = "simpleRenderer:render"
	EventError     = "simpleRenderer:error"
	EventAppReload = "fileWatcher:appReload"
	EventRebuild   = "buildServer:rebuild"
)

// Event is a notification for the host UI.
type Event struct {
	Type   string `json:"type"`
	Detail any    `json:"detail"`
}

// RenderDetail is the detail of EventRender.
type RenderDetail struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId,omitempty"`
	IframeURL   string `json:"iframeUrl,omitempty"`
	ComponentID string `json:"componentId,omitempty"`
}

// ErrorDetail is the detail of EventError.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AppReloadDetail is the detail of EventAppReload.
type AppReloadDetail struct {
	FilePath  string `json:"filePath"`
	Timestamp int64  `json:"timestamp"`
}

// RebuildDetail is the detail of EventRebuild.
type RebuildDetail struct {
	Phase       string `json:"phase"`
	SessionID   string `json:"sessionId,omitempty"`
	TriggerFile string `json:"triggerFile,omitempty"`
	Success     *bool  `json:"success,omitempty"`
	Duration    int64  `json:"duration,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Events fans host events out to subscribers. Handlers run synchronously
// on the emitting goroutine, outside any renderer lock. The zero value is
// not usable; create with NewEvents.
type Events struct {
	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
	logger *slog.Logger
}

// NewEvents creates an event bus.
func NewEvents() *Events {
	return &Events{
		subs:   make(map[int]func(Event)),
		logger: slog.Default().With("component", "events"),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Emit delivers ev to every subscriber. A nil *Events drops the event.
func (e *Events) Emit(ev Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	subs := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.RUnlock()

	for _, fn := range subs {
		e.deliver(fn, ev)
	}
}

func (e *Events) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked", "type", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}
