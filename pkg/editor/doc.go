// Package editor assembles the live-preview runtime.
//
// An Editor owns one session, one component catalog, one drop zone
// manager and one preview surface. Init brings them up in order and starts
// the background workers that keep the preview in sync with the build
// server:
//
//	ed, err := editor.New(cfg, editor.Deps{Logger: logger})
//	if err != nil {
//		return err
//	}
//	if err := ed.Init(ctx); err != nil {
//		return err
//	}
//	defer ed.Dispose()
//
// The Surface is the phone-shaped preview. Dropping a catalog component
// on it selects and renders that component; clearing the selection
// renders the whole application again.
package editor
