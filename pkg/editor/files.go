package editor

import (
	"context"

	"github.com/vango-dev/studio/pkg/buildserver"
	"github.com/vango-dev/studio/pkg/loader"
)

// fileWriter replaces files of a session workspace.
type fileWriter interface {
	WriteFile(ctx context.Context, sessionID, path, content string) error
}

// workspaceFiles serves session files from the local workspace when no
// build server is configured. Every session maps to the same directory.
type workspaceFiles struct {
	store *loader.DirStore
}

func (w workspaceFiles) ReadFile(ctx context.Context, _ string, path string) (string, error) {
	data, err := w.store.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (w workspaceFiles) WriteFile(ctx context.Context, _ string, path, content string) error {
	return w.store.WriteFile(ctx, path, []byte(content))
}

// noSource is the component source when neither a build server nor a
// workspace is configured.
type noSource struct{}

func (noSource) Name() string { return "none" }

func (noSource) Components(context.Context) ([]buildserver.RawComponent, error) {
	return nil, nil
}
