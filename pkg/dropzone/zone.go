package dropzone

import "slices"

// Wildcard in a zone's accept list accepts every component type.
const Wildcard = "*"

// Element is the UI node a zone belongs to.
type Element interface {
	// Bounds returns the element's current rectangle.
	Bounds() Rect
}

// DropState is the visual state of a zone.
type DropState int

const (
	StateIdle DropState = iota
	StateAccepting
	StateHover
)

func (s DropState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccepting:
		return "accepting"
	case StateHover:
		return "hover"
	default:
		return "unknown"
	}
}

// Highlighter is implemented by elements that display drop state.
// SetDropState is called with the manager's lock held and must not call
// back into the Manager.
type Highlighter interface {
	SetDropState(DropState)
}

// Payload is the data carried by a drag.
type Payload struct {
	ComponentID   string `json:"componentId"`
	ComponentName string `json:"componentName"`
	ComponentType string `json:"componentType"`
	Category      string `json:"category"`
}

// Drop is passed to a zone's DropFunc.
type Drop struct {
	ZoneID        string
	ComponentType string
	Payload       Payload

	// Position is relative to the zone's top-left corner.
	Position Point
}

// DropFunc handles a drop accepted by a zone.
type DropFunc func(Drop)

// Zone is a snapshot of a registered zone.
type Zone struct {
	ID        string   `json:"id"`
	Bounds    Rect     `json:"bounds"`
	Accepts   []string `json:"accepts"`
	Accepting bool     `json:"accepting"`
	Active    bool     `json:"active"`
}

type zone struct {
	id      string
	element Element
	bounds  Rect
	types   []string
	onDrop  DropFunc

	accepting bool
	active    bool
}

func (z *zone) accepts(componentType string) bool {
	for _, a := range z.types {
		if a == Wildcard || a == componentType {
			return true
		}
	}
	return false
}

func (z *zone) state() DropState {
	switch {
	case z.active:
		return StateHover
	case z.accepting:
		return StateAccepting
	default:
		return StateIdle
	}
}

// set updates the zone's flags and notifies the element if the visual
// state changed.
func (z *zone) set(accepting, active bool) {
	before := z.state()
	z.accepting, z.active = accepting, active
	if after := z.state(); after != before {
		if h, ok := z.element.(Highlighter); ok {
			h.SetDropState(after)
		}
	}
}

// refresh re-queries the element's bounds.
func (z *zone) refresh() {
	if z.element != nil {
		z.bounds = z.element.Bounds()
	}
}

func (z *zone) snapshot() Zone {
	return Zone{
		ID:        z.id,
		Bounds:    z.bounds,
		Accepts:   slices.Clone(z.types),
		Accepting: z.accepting,
		Active:    z.active,
	}
}
