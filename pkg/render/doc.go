// Package render serialises vdom trees to HTML.
//
// Output is deterministic: attributes are written in sorted order, so two
// renders of the same tree produce byte-identical HTML. The preview relies
// on this to compare snapshots across hot reloads.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(tree)
package render
