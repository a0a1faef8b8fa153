package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/dropzone"
	"github.com/vango-dev/studio/pkg/preview"
	"github.com/vango-dev/studio/pkg/render"
	"github.com/vango-dev/studio/pkg/vdom"
)

// PhoneZoneID is the drop zone id of the preview surface.
const PhoneZoneID = "phone"

// Surface is the phone-shaped preview. It registers itself as a drop zone
// and renders whatever component is dropped on it.
type Surface struct {
	renderer *preview.Renderer
	zones    *dropzone.Manager
	accepts  []string
	logger   *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	bounds    dropzone.Rect
	state     dropzone.DropState
	selection string
	mounted   bool
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithSize sets the phone frame size. The frame starts at the origin
// until SetBounds moves it.
func WithSize(width, height int) SurfaceOption {
	return func(s *Surface) {
		s.bounds = dropzone.Rect{Width: float64(width), Height: float64(height)}
	}
}

// WithAccepts sets the component types the surface accepts.
func WithAccepts(types ...string) SurfaceOption {
	return func(s *Surface) {
		if len(types) > 0 {
			s.accepts = slices.Clone(types)
		}
	}
}

// WithSurfaceLogger sets the logger.
func WithSurfaceLogger(logger *slog.Logger) SurfaceOption {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSurface creates a surface rendering through renderer. Mount must be
// called before it receives drops.
func NewSurface(renderer *preview.Renderer, zones *dropzone.Manager, opts ...SurfaceOption) *Surface {
	s := &Surface{
		renderer: renderer,
		zones:    zones,
		accepts:  []string{dropzone.Wildcard},
		logger:   slog.Default(),
		ctx:      context.Background(),
		bounds:   dropzone.Rect{Width: 375, Height: 812},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "surface")
	return s
}

// Mount registers the phone drop zone. Renders triggered by drops use ctx.
func (s *Surface) Mount(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mounted = true
	accepts := slices.Clone(s.accepts)
	s.mu.Unlock()

	s.zones.Register(PhoneZoneID, s, accepts, s.onDrop)
	s.logger.Debug("surface mounted", "accepts", accepts)
}

// Unmount unregisters the drop zone.
func (s *Surface) Unmount() {
	s.mu.Lock()
	mounted := s.mounted
	s.mounted = false
	s.mu.Unlock()

	if mounted {
		s.zones.Unregister(PhoneZoneID)
	}
}

// Bounds implements dropzone.Element.
func (s *Surface) Bounds() dropzone.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// SetBounds moves or resizes the phone frame in host coordinates.
func (s *Surface) SetBounds(r dropzone.Rect) {
	s.mu.Lock()
	s.bounds = r
	s.mu.Unlock()
}

// SetDropState implements dropzone.Highlighter.
func (s *Surface) SetDropState(state dropzone.DropState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// DropState returns the frame's current highlight.
func (s *Surface) DropState() dropzone.DropState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Surface) onDrop(d dropzone.Drop) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	id := d.Payload.ComponentID
	if id == "" {
		s.logger.Warn("drop without component id", "type", d.ComponentType)
		return
	}
	if err := s.Select(ctx, id, nil); err != nil {
		s.logger.Warn("dropped component failed to render", "component", id, "error", err)
	}
}

// Select renders component id and, once it is mounted, remembers it as
// the selection. A failed render leaves the selection empty.
func (s *Surface) Select(ctx context.Context, id string, props map[string]any) error {
	if id == "" {
		return errors.New("E214").WithDetail("empty component id")
	}
	err := s.renderer.RenderComponent(ctx, id, props)

	s.mu.Lock()
	if err == nil {
		s.selection = id
	} else {
		s.selection = ""
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info("component selected", "component", id)
	return nil
}

// ClearSelection forgets the selection and renders the application.
func (s *Surface) ClearSelection(ctx context.Context) error {
	s.mu.Lock()
	s.selection = ""
	s.mu.Unlock()
	return s.renderer.RenderApp(ctx)
}

// Clear forgets the selection and empties the preview.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.selection = ""
	s.mu.Unlock()
	s.renderer.Clear()
}

// Selection returns the selected component id.
func (s *Surface) Selection() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection, s.selection != ""
}

// Node returns the phone frame wrapping the container's current tree.
func (s *Surface) Node() *vdom.VNode {
	s.mu.Lock()
	bounds := s.bounds
	state := s.state
	selection := s.selection
	s.mu.Unlock()

	var content any = vdom.Div(vdom.Class("studio-empty"), "Nothing rendered")
	if root := s.renderer.Container().Root(); root != nil {
		content = root
	}

	return vdom.Div(
		vdom.Class("studio-phone"),
		vdom.Data("zone", PhoneZoneID),
		vdom.Data("drop-state", state.String()),
		vdom.Data("mode", s.renderer.Mode().String()),
		vdom.AttrIf(selection != "", vdom.Data("selection", selection)),
		vdom.StyleAttr(fmt.Sprintf("width:%gpx;height:%gpx", bounds.Width, bounds.Height)),
		vdom.Div(vdom.Class("studio-screen"), content),
	)
}

// HTML renders the phone frame and its content.
func (s *Surface) HTML() (string, error) {
	return render.HTML(s.Node())
}

// FindInspectable returns the placeholder of component id in the current
// tree, or nil.
func (s *Surface) FindInspectable(id string) *vdom.VNode {
	return preview.FindInspectable(s.renderer.Container().Root(), id)
}
