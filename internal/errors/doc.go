// Package errors provides structured, coded errors for the studio runtime.
//
// Every failure that crosses a package boundary is a *StudioError built from
// a registered code. The code identifies the failure class so callers can
// branch on it without string matching:
//
//   - discovery (E200-E209): component scanning failed; the catalogue
//     degrades to empty
//   - load (E210-E219): an app loader tier failed
//   - drop (E220-E229): a drop was rejected
//   - mount (E230-E239): the preview container could not be (re)mounted
//   - protocol (E240-E259): the build server returned something unusable
//   - config (E260-E279): studio.json problems
//   - cli (E280-E299): command line problems
//
// # Usage
//
//	err := errors.New("E212").
//	    WithSource("s3://bucket/app/App.js").
//	    WithSuggestion("Check loader.original in studio.json").
//	    Wrap(cause)
//
//	if errors.HasCode(err, "E212") { ... }
//
//	fmt.Println(err.Format())
//	// ERROR E212: Original package missing
//	//
//	//   s3://bucket/app/App.js
//	//
//	//   Hint: Check loader.original in studio.json
package errors
