// Package vdom provides the virtual DOM used by the studio preview.
//
// The preview container never touches a real DOM. Every view (the whole
// app, a single inspectable component, an error panel) renders to a VNode
// tree; pkg/render serialises that tree to HTML for connected host UIs.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("phone"), Data("component-id", "booking/Card"),
//	    H2(Text("Booking Card")),
//	    P(Text("Renders a booking summary")),
//	)
//
// # Queries
//
// FindByAttr and Walk let inspectors map rendered nodes back to source
// components through their data-* identity attributes.
package vdom
