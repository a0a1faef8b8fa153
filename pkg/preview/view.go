package preview

import (
	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/loader"
	"github.com/vango-dev/studio/pkg/vdom"
)

// View is the content of a mount: AppView, ComponentView or ErrorView.
type View interface {
	// Mode is the renderer mode the view belongs to.
	Mode() Mode

	// build returns the view's tree and the teardown of anything it
	// started.
	build() (*vdom.VNode, func(), error)
}

// Unmounter is implemented by components that hold resources while
// mounted. Unmount runs on the container's retire queue.
type Unmounter interface {
	Unmount()
}

func teardownOf(c vdom.Component) func() {
	if u, ok := c.(Unmounter); ok {
		return u.Unmount
	}
	return nil
}

// AppView shows a loaded application.
type AppView struct {
	App *loader.App
}

// Mode implements View.
func (AppView) Mode() Mode { return ModeApp }

func (v AppView) build() (*vdom.VNode, func(), error) {
	var content *vdom.VNode
	var teardown func()
	if v.App != nil && v.App.View != nil {
		content = vdom.Expand(v.App.View.Render())
		teardown = teardownOf(v.App.View)
	}

	tier := ""
	if v.App != nil {
		tier = v.App.Tier
	}
	root := vdom.Div(
		vdom.Class("studio-mount", "studio-mount-app"),
		vdom.Data("mode", ModeApp.String()),
		vdom.Data("tier", tier),
		content,
	)
	return root, teardown, nil
}

// ComponentView shows one component inside an inspectable placeholder.
type ComponentView struct {
	Meta  catalog.Metadata
	Props map[string]any

	// Content is the component's own output; nil renders a summary.
	Content vdom.Component
}

// Mode implements View.
func (ComponentView) Mode() Mode { return ModeComponent }

func (v ComponentView) build() (*vdom.VNode, func(), error) {
	var content *vdom.VNode
	var teardown func()
	if v.Content != nil {
		content = vdom.Expand(v.Content.Render())
		teardown = teardownOf(v.Content)
	}
	root := vdom.Div(
		vdom.Class("studio-mount", "studio-mount-component"),
		vdom.Data("mode", ModeComponent.String()),
		Placeholder(v.Meta, v.Props, content),
	)
	return root, teardown, nil
}

// ErrorView shows a failure message.
type ErrorView struct {
	Message string
	Code    string
}

// Mode implements View.
func (ErrorView) Mode() Mode { return ModeError }

func (v ErrorView) build() (*vdom.VNode, func(), error) {
	root := vdom.Div(
		vdom.Class("studio-mount", "studio-mount-error"),
		vdom.Data("mode", ModeError.String()),
		vdom.Role("alert"),
		vdom.H3("Preview failed"),
		vdom.Pre(vdom.Class("studio-error-message"), v.Message),
		vdom.AttrIf(v.Code != "", vdom.Data("error-code", v.Code)),
	)
	return root, nil, nil
}
