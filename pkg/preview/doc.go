// Package preview renders the app or a single component into the phone
// surface.
//
// # Container
//
// A Container is the single mount point of a surface. Its content is one
// Mount at a time, built from a View: AppView, ComponentView or ErrorView.
// Mounting hands the previous mount's teardown to an ordered background
// queue before the new root is installed, so two mounts never coexist and
// teardown never runs inside the caller's render path. A teardown that
// panics is logged; the container is cleared regardless.
//
// # Renderer
//
// The Renderer is a state machine over Idle, App, Component and Error:
//
//	Idle ──RenderApp──────▶ App ◀──┐
//	  │                      │      │ render calls move freely
//	  └──RenderComponent──▶ Component
//	any ──failure──▶ Error ──RenderApp/RenderComponent──▶ ...
//	any ──Clear──▶ Idle
//
// Every request takes an id from a counter. A request whose id is no
// longer the latest when it completes is discarded. Reload replays the
// latest request with the props it carried, so hot reload keeps the mode.
//
// # Reloader
//
// A Reloader turns change notifications into Reload calls. It holds at
// most one pending notification; one arriving while a reload runs replaces
// the pending one.
package preview
