package catalog

import (
	"sort"
	"sync"
)

// Registry holds the current generation of component metadata, keyed by
// id. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	items      map[string]Metadata
	generation uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Metadata)}
}

// Add inserts meta, replacing any entry with the same id. Tags are
// sorted and deduplicated on the way in.
func (r *Registry) Add(meta Metadata) {
	if meta.ID == "" {
		return
	}
	r.mu.Lock()
	r.items[meta.ID] = meta.normalized()
	r.mu.Unlock()
}

// Get returns the component with the given id.
func (r *Registry) Get(id string) (Metadata, bool) {
	r.mu.RLock()
	meta, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return Metadata{}, false
	}
	return meta.clone(), true
}

// Replace installs metas as a new generation and returns its number.
// Later duplicates of an id win.
func (r *Registry) Replace(metas []Metadata) uint64 {
	items := make(map[string]Metadata, len(metas))
	for _, m := range metas {
		if m.ID != "" {
			items[m.ID] = m.normalized()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	r.generation++
	return r.generation
}

// List returns every component sorted by category, then name, then id.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	out := make([]Metadata, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m.clone())
	}
	r.mu.RUnlock()

	sortMetadata(out)
	return out
}

// ByCategory returns the components of one category, sorted by name.
func (r *Registry) ByCategory(category string) []Metadata {
	r.mu.RLock()
	out := []Metadata{}
	for _, m := range r.items {
		if m.Category == category {
			out = append(out, m.clone())
		}
	}
	r.mu.RUnlock()

	sortMetadata(out)
	return out
}

// Categories returns the distinct categories present, sorted.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, m := range r.items {
		seen[m.Category] = struct{}{}
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Generation returns the number of Replace calls so far.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

func sortMetadata(ms []Metadata) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Category != ms[j].Category {
			return ms[i].Category < ms[j].Category
		}
		if ms[i].Name != ms[j].Name {
			return ms[i].Name < ms[j].Name
		}
		return ms[i].ID < ms[j].ID
	})
}
