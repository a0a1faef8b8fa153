package loader

import (
	"context"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/session"
)

// DefaultEntry is the entry file used when none is configured.
const DefaultEntry = "App.js"

// Sessions gives access to the current session. *session.Owner
// implements it.
type Sessions interface {
	Current() (session.Info, bool)
}

// FileReader reads files of a session workspace. *buildserver.Client
// implements it.
type FileReader interface {
	ReadFile(ctx context.Context, sessionID, path string) (string, error)
}

// URLFunc returns the live preview URL of a session.
type URLFunc func(sessionID string) string

// SessionTier loads the app from the active session workspace.
type SessionTier struct {
	Sessions Sessions
	Files    FileReader
	Entry    string
	URL      URLFunc
}

// Name implements Tier.
func (t *SessionTier) Name() string { return TierSession }

// Load implements Tier.
func (t *SessionTier) Load(ctx context.Context) (*App, error) {
	info, src, err := readSessionEntry(ctx, t.Sessions, t.Files, entryOr(t.Entry))
	if err != nil {
		return nil, err
	}
	if info.BundleFailed() {
		return nil, errors.New("E211").
			WithDetail("session bundle failed: " + info.BundleError).
			WithSource(info.SessionID)
	}

	url := ""
	if t.URL != nil {
		url = t.URL(info.SessionID)
	}
	app := &App{
		Tier:      TierSession,
		Entry:     entryOr(t.Entry),
		Source:    src,
		URL:       url,
		SessionID: info.SessionID,
	}
	app.View = frameView(app)
	return app, nil
}

// OriginalTier loads the unedited application package.
type OriginalTier struct {
	Store PackageStore
	Entry string

	// URL is the live preview address of the original bundle, if any.
	URL string
}

// Name implements Tier.
func (t *OriginalTier) Name() string { return TierOriginal }

// Load implements Tier.
func (t *OriginalTier) Load(ctx context.Context) (*App, error) {
	if t.Store == nil {
		return nil, errors.New("E212").WithDetail("no original package configured")
	}
	entry := entryOr(t.Entry)
	data, err := t.Store.ReadFile(ctx, entry)
	if err != nil {
		return nil, errors.FromError(err, "E212")
	}
	app := &App{
		Tier:   TierOriginal,
		Entry:  entry,
		Source: string(data),
		URL:    t.URL,
	}
	app.View = frameView(app)
	return app, nil
}

// PlaceholderTier synthesizes an app from source hints. It reads the entry
// file from the session workspace if possible, else from the original
// package.
type PlaceholderTier struct {
	Sessions Sessions
	Files    FileReader
	Store    PackageStore
	Entry    string
}

// Name implements Tier.
func (t *PlaceholderTier) Name() string { return TierPlaceholder }

// Load implements Tier.
func (t *PlaceholderTier) Load(ctx context.Context) (*App, error) {
	entry := entryOr(t.Entry)

	src, origin, err := t.source(ctx, entry)
	if err != nil {
		return nil, errors.New("E213").
			WithDetail("no source text available for " + entry).
			Wrap(err)
	}

	hints := ParseHints(src)
	app := &App{
		Tier:   TierPlaceholder,
		Entry:  entry,
		Source: src,
		Hints:  &hints,
	}
	app.View = placeholderView(hints, origin)
	return app, nil
}

func (t *PlaceholderTier) source(ctx context.Context, entry string) (string, string, error) {
	var last error = errors.New("E213").WithDetail("no source configured")
	if t.Sessions != nil && t.Files != nil {
		_, src, err := readSessionEntry(ctx, t.Sessions, t.Files, entry)
		if err == nil {
			return src, TierSession, nil
		}
		last = err
	}
	if t.Store != nil {
		data, err := t.Store.ReadFile(ctx, entry)
		if err == nil {
			return string(data), TierOriginal, nil
		}
		last = err
	}
	return "", "", last
}

func readSessionEntry(ctx context.Context, sessions Sessions, files FileReader, entry string) (session.Info, string, error) {
	if sessions == nil || files == nil {
		return session.Info{}, "", errors.New("E211").WithDetail("no build server configured")
	}
	info, ok := sessions.Current()
	if !ok || info.SessionID == "" {
		return session.Info{}, "", errors.New("E211").WithDetail("no active session")
	}
	src, err := files.ReadFile(ctx, info.SessionID, entry)
	if err != nil {
		return info, "", errors.New("E211").Wrap(err).WithSource(entry)
	}
	return info, src, nil
}

func entryOr(entry string) string {
	if entry == "" {
		return DefaultEntry
	}
	return entry
}
