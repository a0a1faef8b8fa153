package catalog

import (
	"sync"
	"testing"
)

func TestRegistryAddGet(t *testing.T) {
	r := NewRegistry()
	r.Add(Metadata{ID: "a", Name: "A", Tags: []string{"x"}})
	r.Add(Metadata{ID: "a", Name: "A2"})
	r.Add(Metadata{Name: "no id"})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	got, ok := r.Get("a")
	if !ok || got.Name != "A2" {
		t.Errorf("Get(a) = %+v, %v", got, ok)
	}
	if got.Tags == nil {
		t.Error("Tags should be non-nil")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) reported found")
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := NewRegistry()
	tags := []string{"a", "b"}
	r.Add(Metadata{ID: "x", Tags: tags})
	tags[0] = "mutated"

	got, _ := r.Get("x")
	if got.Tags[0] != "a" {
		t.Errorf("registry shares caller slice: %v", got.Tags)
	}
	got.Tags[1] = "changed"
	again, _ := r.Get("x")
	if again.Tags[1] != "b" {
		t.Errorf("registry shares returned slice: %v", again.Tags)
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	r.Add(Metadata{ID: "old"})

	gen := r.Replace([]Metadata{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}})
	if gen != 1 || r.Generation() != 1 {
		t.Errorf("generation = %d/%d, want 1", gen, r.Generation())
	}
	if _, ok := r.Get("old"); ok {
		t.Error("Replace kept entry from previous generation")
	}
	if got, _ := r.Get("a"); got.Name != "second" {
		t.Errorf("duplicate resolution: %+v", got)
	}

	r.Replace(nil)
	if r.Len() != 0 || r.Generation() != 2 {
		t.Errorf("after empty Replace: len %d gen %d", r.Len(), r.Generation())
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Replace([]Metadata{
		{ID: "3", Name: "Zeta", Category: "cards"},
		{ID: "1", Name: "Home", Category: "screens"},
		{ID: "2", Name: "Alpha", Category: "cards"},
		{ID: "4", Name: "Alpha", Category: "cards"},
	})

	list := r.List()
	ids := make([]string, len(list))
	for i, m := range list {
		ids[i] = m.ID
	}
	want := []string{"2", "4", "3", "1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("List order = %v, want %v", ids, want)
		}
	}

	cards := r.ByCategory("cards")
	if len(cards) != 3 {
		t.Errorf("ByCategory(cards) = %d entries", len(cards))
	}
	if none := r.ByCategory("forms"); none == nil || len(none) != 0 {
		t.Errorf("ByCategory(forms) = %#v, want empty", none)
	}

	cats := r.Categories()
	if len(cats) != 2 || cats[0] != "cards" || cats[1] != "screens" {
		t.Errorf("Categories = %v", cats)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Add(Metadata{ID: string(rune('a' + i))})
				r.List()
				if j%10 == 0 {
					r.Replace([]Metadata{{ID: "z"}})
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestRegistryNormalizesTags(t *testing.T) {
	r := NewRegistry()
	r.Add(Metadata{ID: "card", Tags: []string{"zeta", "alpha", "", "zeta", "mid"}})

	got, _ := r.Get("card")
	want := []string{"alpha", "mid", "zeta"}
	if len(got.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", got.Tags, want)
	}
	for i := range want {
		if got.Tags[i] != want[i] {
			t.Fatalf("Tags = %v, want %v", got.Tags, want)
		}
	}
	for _, tag := range []string{"alpha", "mid", "zeta"} {
		if !got.HasTag(tag) {
			t.Errorf("HasTag(%q) = false", tag)
		}
	}
	if got.HasTag("") {
		t.Error("empty tag kept")
	}
}
