package catalog

import (
	"slices"
	"sort"
)

// Metadata describes one discovered component. Values are immutable once
// returned by a Scanner or Registry.
type Metadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

// HasTag reports whether the component carries tag.
func (m Metadata) HasTag(tag string) bool {
	_, found := slices.BinarySearch(m.Tags, tag)
	return found
}

// clone returns a copy that shares no memory with m.
func (m Metadata) clone() Metadata {
	m.Tags = slices.Clone(m.Tags)
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}

// normalized returns a copy of m whose tags are sorted and deduplicated,
// as HasTag requires.
func (m Metadata) normalized() Metadata {
	m.Tags = tagSet(m.Tags)
	return m
}

// tagSet returns the sorted, deduplicated, non-empty tags of all lists.
func tagSet(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, t := range list {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
