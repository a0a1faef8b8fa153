package preview

import (
	"maps"
	"strconv"
	"time"

	"github.com/vango-dev/studio/pkg/catalog"
)

// Mode is the renderer's state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeApp
	ModeComponent
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeApp:
		return "app"
	case ModeComponent:
		return "component"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is a snapshot of the renderer.
type State struct {
	Mode Mode `json:"mode"`

	// Component is set in component mode, and in error mode when the
	// failed request was a component render.
	Component *catalog.Metadata `json:"component,omitempty"`

	// Props are the last applied component props.
	Props map[string]any `json:"props,omitempty"`

	// Tier is the loader tier of the mounted app.
	Tier string `json:"tier,omitempty"`

	// MountID identifies the current mount; 0 when nothing is mounted.
	MountID uint64 `json:"mountId"`

	// Request is the id of the request that produced this state.
	Request uint64 `json:"request"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (s State) clone() State {
	if s.Component != nil {
		meta := *s.Component
		s.Component = &meta
	}
	s.Props = maps.Clone(s.Props)
	return s
}

// requestKind is what a request renders.
type requestKind int

const (
	requestNone requestKind = iota
	requestApp
	requestComponent
)

// request is the latest render the caller asked for; Reload replays it.
type request struct {
	kind        requestKind
	componentID string
	props       map[string]any
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
