package dropzone

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/studio/internal/telemetry"
)

// Session is the drag in progress.
type Session struct {
	ID            string    `json:"id"`
	ComponentType string    `json:"componentType"`
	Payload       Payload   `json:"payload"`
	Hovered       string    `json:"hovered,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
}

// Manager coordinates drop zones and the current drag. It is safe for
// concurrent use.
type Manager struct {
	mu sync.Mutex

	// zones in registration order; the last one is on top.
	zones []*zone
	drag  *Session

	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records drop outcomes.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a Manager with no zones.
func NewManager(opts ...Option) *Manager {
	m := &Manager{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "dropzone")
	return m
}

func (m *Manager) find(id string) (int, *zone) {
	for i, z := range m.zones {
		if z.id == id {
			return i, z
		}
	}
	return -1, nil
}

// removeLocked deactivates and drops the zone with id.
func (m *Manager) removeLocked(id string) bool {
	i, z := m.find(id)
	if z == nil {
		return false
	}
	z.set(false, false)
	m.zones = slices.Delete(m.zones, i, i+1)
	if m.drag != nil && m.drag.Hovered == id {
		m.drag.Hovered = ""
	}
	return true
}

// Register adds a zone. An existing zone with the same id is replaced and
// moves to the top. The element's bounds are read once now; HandleDrop
// reads them again.
func (m *Manager) Register(id string, element Element, accepts []string, onDrop DropFunc) {
	z := &zone{
		id:      id,
		element: element,
		types:   slices.Clone(accepts),
		onDrop:  onDrop,
	}
	z.refresh()

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := m.removeLocked(id)
	m.zones = append(m.zones, z)
	if m.drag != nil && z.accepts(m.drag.ComponentType) {
		z.set(true, false)
	}

	m.logger.Debug("zone registered",
		"zone", id,
		"accepts", accepts,
		"bounds", z.bounds,
		"replaced", replaced,
	)
}

// Unregister deactivates and removes a zone. Unknown ids are ignored.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removeLocked(id) {
		m.logger.Debug("zone unregistered", "zone", id)
	}
}

// StartDrag begins a drag, ending any drag already in progress, and marks
// every zone accepting componentType as Accepting.
func (m *Manager) StartDrag(componentType string, payload Payload) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drag != nil {
		m.logger.Debug("drag superseded", "drag", m.drag.ID)
		m.endLocked()
	}

	m.drag = &Session{
		ID:            uuid.NewString(),
		ComponentType: componentType,
		Payload:       payload,
		StartedAt:     time.Now(),
	}
	for _, z := range m.zones {
		if z.accepts(componentType) {
			z.set(true, false)
		}
	}

	m.logger.Debug("drag started",
		"drag", m.drag.ID,
		"type", componentType,
		"component", payload.ComponentID,
	)
	return *m.drag
}

// hitLocked returns the topmost zone containing p.
func (m *Manager) hitLocked(p Point) *zone {
	for i := len(m.zones) - 1; i >= 0; i-- {
		if m.zones[i].bounds.Contains(p) {
			return m.zones[i]
		}
	}
	return nil
}

// UpdateDragPosition moves the hover highlight to the zone under (x, y),
// if that zone accepts the dragged type. It does nothing without a drag.
func (m *Manager) UpdateDragPosition(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drag == nil {
		return
	}

	next := ""
	if z := m.hitLocked(Point{X: x, Y: y}); z != nil && z.accepts(m.drag.ComponentType) {
		next = z.id
	}
	if next == m.drag.Hovered {
		return
	}

	if _, old := m.find(m.drag.Hovered); old != nil {
		old.set(old.accepting, false)
	}
	if _, z := m.find(next); z != nil {
		z.set(z.accepting, true)
	}
	m.drag.Hovered = next
}

// HandleDrop resolves the zone at (x, y) using fresh bounds. If the zone
// accepts componentType the drag ends, the zone's DropFunc runs with the
// position relative to the zone, and HandleDrop returns true. Otherwise
// the drag ends and HandleDrop returns false.
func (m *Manager) HandleDrop(componentType string, payload Payload, x, y float64) bool {
	p := Point{X: x, Y: y}

	m.mu.Lock()
	for _, z := range m.zones {
		z.refresh()
	}
	z := m.hitLocked(p)
	var (
		drop   Drop
		onDrop DropFunc
	)
	accepted := z != nil && z.accepts(componentType)
	if accepted {
		onDrop = z.onDrop
		drop = Drop{
			ZoneID:        z.id,
			ComponentType: componentType,
			Payload:       payload,
			Position:      z.bounds.Relative(p),
		}
	}
	m.endLocked()
	m.mu.Unlock()

	m.metrics.RecordDrop(accepted)

	if !accepted {
		zoneID := ""
		if z != nil {
			zoneID = z.id
		}
		m.logger.Debug("drop rejected",
			"code", "E220",
			"type", componentType,
			"x", x,
			"y", y,
			"zone", zoneID,
		)
		return false
	}

	m.logger.Debug("drop accepted",
		"zone", drop.ZoneID,
		"type", componentType,
		"component", payload.ComponentID,
	)
	if onDrop != nil {
		m.dispatch(onDrop, drop)
	}
	return true
}

func (m *Manager) dispatch(fn DropFunc, drop Drop) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("drop handler panicked",
				"zone", drop.ZoneID,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	fn(drop)
}

// EndDrag clears the drag and every zone's drop state. It is safe to call
// without a drag.
func (m *Manager) EndDrag() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endLocked()
}

func (m *Manager) endLocked() {
	for _, z := range m.zones {
		z.set(false, false)
	}
	m.drag = nil
}

// Dragging returns the drag in progress.
func (m *Manager) Dragging() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drag == nil {
		return Session{}, false
	}
	return *m.drag, true
}

// Active returns the id of the zone under the pointer.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, z := range m.zones {
		if z.active {
			return z.id, true
		}
	}
	return "", false
}

// Zones returns a snapshot of the registered zones in registration order.
func (m *Manager) Zones() []Zone {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Zone, len(m.zones))
	for i, z := range m.zones {
		out[i] = z.snapshot()
	}
	return out
}

// Len returns the number of registered zones.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.zones)
}

// Reset ends the drag and removes every zone.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endLocked()
	m.zones = nil
}
