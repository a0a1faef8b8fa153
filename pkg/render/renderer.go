package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vango-dev/studio/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty puts every element on its own indented line.
	Pretty bool

	// Indent is one indentation level in pretty mode. Defaults to two spaces.
	Indent string
}

// Renderer serialises vdom trees. It keeps no state between calls and may
// be shared across goroutines.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders node to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var sb strings.Builder
	if err := r.RenderToWriter(&sb, node); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderToWriter streams node to w. Output written before an error is
// left in w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	hw := &htmlWriter{w: w, cfg: r.config}
	hw.node(node, 0)
	return hw.err
}

// HTML renders node with the default configuration.
func HTML(node *vdom.VNode) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(node)
}

// htmlWriter carries the first error of a render; every write after it is
// a no-op.
type htmlWriter struct {
	w   io.Writer
	cfg RendererConfig
	err error
}

func (hw *htmlWriter) str(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) fail(err error) {
	if hw.err == nil {
		hw.err = err
	}
}

func (hw *htmlWriter) newline() {
	if hw.cfg.Pretty {
		hw.str("\n")
	}
}

func (hw *htmlWriter) indent(depth int) {
	if hw.cfg.Pretty && depth > 0 {
		hw.str(strings.Repeat(hw.cfg.Indent, depth))
	}
}

func (hw *htmlWriter) node(n *vdom.VNode, depth int) {
	if n == nil || hw.err != nil {
		return
	}
	switch n.Kind {
	case vdom.KindElement:
		hw.element(n, depth)
	case vdom.KindText:
		hw.str(escapeHTML(n.Text))
	case vdom.KindRaw:
		hw.str(n.Text)
	case vdom.KindFragment:
		for _, c := range n.Children {
			hw.node(c, depth)
		}
	case vdom.KindComponent:
		if n.Comp != nil {
			hw.node(n.Comp.Render(), depth)
		}
	default:
		hw.fail(fmt.Errorf("render: unknown node kind %d", n.Kind))
	}
}

func (hw *htmlWriter) element(n *vdom.VNode, depth int) {
	if n.Tag == "" {
		hw.fail(fmt.Errorf("render: element without tag"))
		return
	}

	hw.indent(depth)
	hw.str("<" + n.Tag)
	hw.attrs(n)
	hw.str(">")
	if vdom.IsVoidElement(n.Tag) {
		hw.newline()
		return
	}

	nested := len(n.Children) > 0
	if nested {
		hw.newline()
	}
	for _, c := range n.Children {
		hw.node(c, depth+1)
	}
	if nested {
		hw.indent(depth)
	}
	hw.str("</" + n.Tag + ">")
	hw.newline()
}

// attrs writes the element's props sorted by name. Props starting with an
// underscore are private to the tree and never rendered.
func (hw *htmlWriter) attrs(n *vdom.VNode) {
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		if !strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := n.Props[k].(type) {
		case nil:
		case bool:
			if v {
				hw.str(" " + k)
			}
		default:
			hw.str(" " + k + `="`)
			hw.str(escapeAttr(n.AttrString(k)))
			hw.str(`"`)
		}
	}
}
