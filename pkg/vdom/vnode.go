package vdom

import "fmt"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <iframe>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component, rendered lazily
	KindRaw                    // Raw HTML (trusted content only)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindRaw
	Comp     Component // For KindComponent
}

// Props holds element attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is anything that can render to a VNode.
type Component interface {
	Render() *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}

// AttrString returns the attribute value for key formatted as a string.
// Boolean true renders as the attribute name, false and nil as "".
func (v *VNode) AttrString(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	switch val := v.Props[key].(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return key
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// HasAttr reports whether the node carries the attribute.
func (v *VNode) HasAttr(key string) bool {
	if v == nil || v.Props == nil {
		return false
	}
	_, ok := v.Props[key]
	return ok
}

// Expand renders nested components in place and returns a tree made only of
// elements, text, raw and fragment nodes. A component whose Render panics is
// not recovered here; callers that host untrusted components recover.
func Expand(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindComponent {
		if node.Comp == nil {
			return nil
		}
		return Expand(node.Comp.Render())
	}
	if len(node.Children) == 0 {
		return node
	}

	out := *node
	out.Children = make([]*VNode, 0, len(node.Children))
	for _, child := range node.Children {
		if expanded := Expand(child); expanded != nil {
			out.Children = append(out.Children, expanded)
		}
	}
	return &out
}
