package preview

import (
	"fmt"
	"sort"

	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/vdom"
)

// Identity attributes carried by an inspectable placeholder.
const (
	AttrComponentID       = "data-component-id"
	AttrComponentName     = "data-component-name"
	AttrComponentCategory = "data-component-category"
	AttrComponentPath     = "data-component-path"
)

// Identity is the machine-readable identity of an inspectable node.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Path     string `json:"path"`
}

// IdentityOf reads the identity attributes of node.
func IdentityOf(node *vdom.VNode) Identity {
	return Identity{
		ID:       node.AttrString(AttrComponentID),
		Name:     node.AttrString(AttrComponentName),
		Category: node.AttrString(AttrComponentCategory),
		Path:     node.AttrString(AttrComponentPath),
	}
}

// Placeholder wraps content in a node carrying meta's identity. A nil
// content renders the component's name, description and props.
func Placeholder(meta catalog.Metadata, props map[string]any, content *vdom.VNode) *vdom.VNode {
	if content == nil {
		content = summary(meta, props)
	}
	return vdom.Div(
		vdom.Class("studio-inspectable"),
		vdom.Attr{Key: AttrComponentID, Value: meta.ID},
		vdom.Attr{Key: AttrComponentName, Value: meta.Name},
		vdom.Attr{Key: AttrComponentCategory, Value: meta.Category},
		vdom.Attr{Key: AttrComponentPath, Value: meta.Path},
		content,
	)
}

func summary(meta catalog.Metadata, props map[string]any) *vdom.VNode {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var list *vdom.VNode
	if len(keys) > 0 {
		items := make([]*vdom.VNode, len(keys))
		for i, k := range keys {
			items[i] = vdom.Li(vdom.Data("prop", k), fmt.Sprintf("%s: %v", k, props[k]))
		}
		list = vdom.Ul(vdom.Class("studio-props"), items)
	}

	return vdom.Div(
		vdom.Class("studio-component-summary"),
		vdom.H3(meta.Name),
		vdom.AttrIf(meta.Description != "", vdom.Title(meta.Description)),
		vdom.P(vdom.Class("studio-component-category"), meta.Category),
		list,
	)
}

// FindInspectable returns the inspectable node for component id under root.
func FindInspectable(root *vdom.VNode, id string) *vdom.VNode {
	return vdom.FindByAttr(root, AttrComponentID, id)
}

// ComponentFactory supplies real output for components it knows.
type ComponentFactory interface {
	Component(meta catalog.Metadata, props map[string]any) (vdom.Component, bool)
}

// Factories maps component ids to constructors.
type Factories map[string]func(props map[string]any) vdom.Component

// Component implements ComponentFactory.
func (f Factories) Component(meta catalog.Metadata, props map[string]any) (vdom.Component, bool) {
	ctor, ok := f[meta.ID]
	if !ok {
		return nil, false
	}
	return ctor(props), true
}
