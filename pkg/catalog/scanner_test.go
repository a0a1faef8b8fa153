package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/studio/pkg/buildserver"
)

type staticSource struct {
	raws []buildserver.RawComponent
	err  error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Components(context.Context) ([]buildserver.RawComponent, error) {
	return s.raws, s.err
}

func TestScanFailureYieldsEmpty(t *testing.T) {
	s := NewScanner(&staticSource{err: errors.New("connection refused")}, NewRegistry())

	got := s.Scan(context.Background())
	if got == nil {
		t.Fatal("Scan returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("Scan returned %d components", len(got))
	}
}

func TestScanZeroComponents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"components":[]}`))
	}))
	defer srv.Close()

	reg := NewRegistry()
	s := NewScanner(NewServerSource(buildserver.New(srv.URL)), reg)

	if n := s.Refresh(context.Background()); n != 0 {
		t.Errorf("Refresh = %d, want 0", n)
	}
	if reg.Len() != 0 || reg.Generation() != 1 {
		t.Errorf("registry len %d gen %d", reg.Len(), reg.Generation())
	}
	if list := reg.List(); list == nil {
		t.Error("List returned nil")
	}
}

func TestScanNormalizesAndDedupes(t *testing.T) {
	src := &staticSource{raws: []buildserver.RawComponent{
		{Path: "src/screens/HomeScreen.js"},
		{},
		{ID: "src/screens/HomeScreen", Name: "Home v2", Path: "src/screens/HomeScreen.js"},
		{Path: "src/cards/ServiceCard.js"},
	}}
	s := NewScanner(src, NewRegistry())

	got := s.Scan(context.Background())
	if len(got) != 2 {
		t.Fatalf("Scan = %d entries, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Home v2" {
		t.Errorf("duplicate id kept %q, want last entry", got[0].Name)
	}
}

func TestRefreshKeepsGenerationOnFailure(t *testing.T) {
	src := &staticSource{raws: []buildserver.RawComponent{{Path: "src/cards/ServiceCard.js"}}}
	reg := NewRegistry()
	s := NewScanner(src, reg)

	if n := s.Refresh(context.Background()); n != 1 {
		t.Fatalf("Refresh = %d", n)
	}

	src.err = errors.New("down")
	if n := s.Refresh(context.Background()); n != 1 {
		t.Errorf("Refresh after failure = %d, want previous 1", n)
	}
	if reg.Generation() != 1 {
		t.Errorf("generation = %d, want 1", reg.Generation())
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"App.js",
		"index.js",
		"src/screens/HomeScreen.js",
		"src/cards/ServiceCard.tsx",
		"src/cards/ServiceCard.test.tsx",
		"src/cards/helpers.js",
		"src/cards/README.md",
		"node_modules/Pkg/Thing.js",
		".cache/Hidden.js",
	}
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := NewRegistry()
	s := NewScanner(NewDirSource(root), reg)
	s.Refresh(context.Background())

	want := map[string]string{
		"App":                    GenericCategory,
		"src/screens/HomeScreen": "screens",
		"src/cards/ServiceCard":  "cards",
	}
	if reg.Len() != len(want) {
		t.Fatalf("registry = %+v", reg.List())
	}
	for id, cat := range want {
		meta, ok := reg.Get(id)
		if !ok {
			t.Errorf("missing %s", id)
			continue
		}
		if meta.Category != cat {
			t.Errorf("%s category = %q, want %q", id, meta.Category, cat)
		}
	}
}

func TestDirSourceMissingRoot(t *testing.T) {
	s := NewScanner(NewDirSource(filepath.Join(t.TempDir(), "nope")), NewRegistry())
	if got := s.Scan(context.Background()); len(got) != 0 {
		t.Errorf("Scan = %v", got)
	}
}
