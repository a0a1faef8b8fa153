package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("component-id", "cards/Card") → data-component-id="cards/Card"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Title sets the title attribute.
func Title(title string) Attr { return attr("title", title) }

// Key sets the reconciliation key.
func Key(key string) Attr { return attr("key", key) }

// AttrIf returns the attribute when cond holds and an empty Attr otherwise.
func AttrIf(cond bool, a Attr) Attr {
	if cond {
		return a
	}
	return Attr{}
}
