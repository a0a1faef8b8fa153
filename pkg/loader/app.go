package loader

import (
	"time"

	"github.com/vango-dev/studio/pkg/vdom"
)

// Tier names.
const (
	TierSession     = "session"
	TierOriginal    = "original"
	TierPlaceholder = "placeholder"
)

// App is a loaded application.
type App struct {
	// Tier is the name of the tier that produced the app.
	Tier string

	// Entry is the entry file the app was read from.
	Entry string

	// Source is the entry file's text.
	Source string

	// URL is the live preview address, if the tier has one.
	URL string

	// SessionID is set when the app comes from a session workspace.
	SessionID string

	// Hints are set for placeholder apps.
	Hints *Hints

	// View renders the app.
	View vdom.Component
}

// Attempt records one tier's outcome.
type Attempt struct {
	Tier     string
	Err      error
	Duration time.Duration
}

// Result is the outcome of Chain.Load. Exactly one of App and Err is set.
type Result struct {
	App      *App
	Err      error
	Attempts []Attempt
}

// OK reports whether an app was loaded.
func (r Result) OK() bool {
	return r.App != nil && r.Err == nil
}
