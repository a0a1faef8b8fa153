package vdom

// Walk visits node and its descendants depth-first in document order.
// Returning false from fn stops the walk. Component nodes are not rendered;
// call Expand first to walk their output.
func Walk(node *VNode, fn func(*VNode) bool) bool {
	if node == nil {
		return true
	}
	if !fn(node) {
		return false
	}
	for _, child := range node.Children {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// FindByAttr returns the first element whose attribute key equals value.
func FindByAttr(root *VNode, key, value string) *VNode {
	var found *VNode
	Walk(root, func(n *VNode) bool {
		if n.Kind == KindElement && n.HasAttr(key) && n.AttrString(key) == value {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAllByAttr returns every element carrying the attribute, in document order.
func FindAllByAttr(root *VNode, key string) []*VNode {
	var out []*VNode
	Walk(root, func(n *VNode) bool {
		if n.Kind == KindElement && n.HasAttr(key) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TextContent concatenates the text of node and its descendants.
func TextContent(node *VNode) string {
	var buf []byte
	Walk(node, func(n *VNode) bool {
		if n.Kind == KindText {
			buf = append(buf, n.Text...)
		}
		return true
	})
	return string(buf)
}
