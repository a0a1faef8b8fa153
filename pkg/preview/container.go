package preview

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/render"
	"github.com/vango-dev/studio/pkg/vdom"
)

// retireQueueSize bounds the number of teardowns waiting to run.
const retireQueueSize = 64

// Mount is the content installed in a Container.
type Mount struct {
	ID   uint64
	View View
	Root *vdom.VNode

	teardown func()
}

// Container is the single mount point of a preview surface. It is safe
// for concurrent use.
type Container struct {
	// build serialises Mount; mu guards the fields below.
	build sync.Mutex

	mu      sync.RWMutex
	current *Mount
	nextID  uint64

	retire chan func()
	done   chan struct{}
	closed bool

	logger *slog.Logger
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithContainerLogger sets the logger.
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewContainer creates an empty container and starts its retire queue.
// Close stops the queue.
func NewContainer(opts ...ContainerOption) *Container {
	c := &Container{
		retire: make(chan func(), retireQueueSize),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "container")
	go c.retireLoop()
	return c
}

func (c *Container) retireLoop() {
	defer close(c.done)
	for fn := range c.retire {
		fn()
	}
}

// schedule queues the teardown of m. Callers hold c.mu. Once the
// container is closed teardowns run inline.
func (c *Container) schedule(m *Mount) {
	if m == nil {
		return
	}
	if c.closed {
		c.teardown(m)
		return
	}
	c.retire <- func() { c.teardown(m) }
}

func (c *Container) teardown(m *Mount) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New("E231").WithDetail(fmt.Sprint(r))
			c.logger.Error("teardown failed", "mount", m.ID, "code", "E231", "error", err)
		}
	}()
	if m.teardown != nil {
		m.teardown()
	}
	c.logger.Debug("mount retired", "mount", m.ID, "mode", m.View.Mode())
}

// Mount retires the current mount, then builds view and installs it. The
// previous teardown is queued before the new view renders. If the build
// fails the container is left empty and an E230 error is returned.
func (c *Container) Mount(view View) (*Mount, error) {
	c.build.Lock()
	defer c.build.Unlock()

	c.mu.Lock()
	c.schedule(c.current)
	c.current = nil
	c.mu.Unlock()

	root, teardown, err := safeBuild(view)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if teardown != nil {
			c.schedule(&Mount{View: view, teardown: teardown})
		}
		return nil, err
	}

	c.nextID++
	m := &Mount{ID: c.nextID, View: view, Root: root, teardown: teardown}
	if c.closed {
		c.schedule(m)
		return nil, errors.New("E230").WithDetail("container closed during build")
	}
	c.current = m
	return m, nil
}

func safeBuild(view View) (root *vdom.VNode, teardown func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = errors.New("E230").WithDetail(fmt.Sprint(r))
		}
	}()
	root, teardown, err = view.build()
	if err != nil {
		return nil, teardown, errors.FromError(err, "E230")
	}
	if root == nil {
		return nil, teardown, errors.New("E230").WithDetail("view rendered nothing")
	}
	return root, teardown, nil
}

// Clear retires the current mount.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule(c.current)
	c.current = nil
}

// Current returns the current mount, or nil.
func (c *Container) Current() *Mount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Root returns the current tree, or nil.
func (c *Container) Root() *vdom.VNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	return c.current.Root
}

// HTML renders the current tree. An empty container renders "".
func (c *Container) HTML() (string, error) {
	root := c.Root()
	if root == nil {
		return "", nil
	}
	return render.HTML(root)
}

// Flush blocks until every teardown queued so far has run.
func (c *Container) Flush() {
	done := make(chan struct{})
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.retire <- func() { close(done) }
	c.mu.Unlock()
	<-done
}

// Close retires the current mount and stops the retire queue after it
// drains.
func (c *Container) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.schedule(c.current)
	c.current = nil
	c.closed = true
	close(c.retire)
	c.mu.Unlock()
	<-c.done
}
