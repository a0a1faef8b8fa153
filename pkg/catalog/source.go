package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/buildserver"
)

// Source produces raw component entries.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Components lists the components the source knows about.
	Components(ctx context.Context) ([]buildserver.RawComponent, error)
}

// componentScanner is the part of *buildserver.Client a ServerSource needs.
type componentScanner interface {
	ScanComponents(ctx context.Context) ([]buildserver.RawComponent, error)
}

// ServerSource lists components through the build server.
type ServerSource struct {
	client componentScanner
}

// NewServerSource creates a source backed by the build server client.
func NewServerSource(client componentScanner) *ServerSource {
	return &ServerSource{client: client}
}

// Name implements Source.
func (s *ServerSource) Name() string { return "build-server" }

// Components implements Source.
func (s *ServerSource) Components(ctx context.Context) ([]buildserver.RawComponent, error) {
	return s.client.ScanComponents(ctx)
}

// DefaultExtensions are the file extensions DirSource treats as components.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"__tests__":    true,
}

// DirSource lists components by walking a workspace directory. A file is a
// component when its extension is listed and its name starts with an
// uppercase letter; tests, stories and index files are skipped.
type DirSource struct {
	Root       string
	Extensions []string
}

// NewDirSource creates a source walking root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root, Extensions: DefaultExtensions}
}

// Name implements Source.
func (d *DirSource) Name() string { return "workspace:" + d.Root }

// Components implements Source.
func (d *DirSource) Components(ctx context.Context) ([]buildserver.RawComponent, error) {
	if _, err := os.Stat(d.Root); err != nil {
		return nil, errors.New("E202").Wrap(err).WithSource(d.Root)
	}

	exts := d.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var out []buildserver.RawComponent
	err := filepath.WalkDir(d.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := entry.Name()
		if entry.IsDir() {
			if p != d.Root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isComponentFile(name, exts) {
			return nil
		}

		rel, err := filepath.Rel(d.Root, p)
		if err != nil {
			return err
		}
		out = append(out, buildserver.RawComponent{Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, errors.New("E202").Wrap(err).WithSource(d.Root)
	}
	return out, nil
}

func isComponentFile(name string, exts []string) bool {
	ext := filepath.Ext(name)
	matched := false
	for _, e := range exts {
		if ext == e {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	base := strings.TrimSuffix(name, ext)
	if base == "" || strings.Contains(base, ".test") || strings.Contains(base, ".spec") || strings.Contains(base, ".stories") {
		return false
	}
	first := []rune(base)[0]
	return unicode.IsUpper(first)
}
