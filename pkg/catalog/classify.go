package catalog

import (
	"path"
	"strings"
	"unicode"

	"github.com/vango-dev/studio/pkg/buildserver"
)

// GenericCategory is the category of components in no known folder.
const GenericCategory = "components"

// categorySegments are matched against path segments in this order; the
// first one present in the path wins.
var categorySegments = []string{
	"screens",
	"templates",
	"booking",
	"services",
	"cards",
	"forms",
	"layout",
	"navigation",
	"common",
}

// nameSuffixes are stripped from file names; at most one is removed.
var nameSuffixes = []string{"Screen", "Template", "Component", "Block"}

// InferCategory returns the category of the component at p.
func InferCategory(p string) string {
	segments := strings.Split(strings.ToLower(toSlash(p)), "/")
	for _, cat := range categorySegments {
		for _, seg := range segments[:max(len(segments)-1, 0)] {
			if seg == cat {
				return cat
			}
		}
	}
	return GenericCategory
}

// BaseName returns the file name of p without directory or extension.
func BaseName(p string) string {
	base := path.Base(toSlash(p))
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// InferName turns a path or identifier into a display name: "HomeScreen"
// becomes "Home", "ServiceCardBlock" becomes "Service Card". The result is
// lossy; "Screen" alone stays "Screen".
func InferName(p string) string {
	base := BaseName(p)
	for _, suffix := range nameSuffixes {
		if trimmed, ok := strings.CutSuffix(base, suffix); ok && trimmed != "" {
			base = trimmed
			break
		}
	}
	return spaceWords(base)
}

// spaceWords inserts a space before each capital that follows a lowercase
// letter or digit. Dashes and underscores become spaces.
func spaceWords(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if r == '-' || r == '_' {
			r = ' '
		}
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IDFromPath derives a component id from its path: the cleaned,
// slash-separated path without extension.
func IDFromPath(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+toSlash(p)), "/")
	if p == "" {
		return ""
	}
	if ext := path.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Normalize maps a raw scan entry to Metadata. Missing fields are inferred;
// entries with neither id, path nor name are rejected.
func Normalize(raw buildserver.RawComponent) (Metadata, bool) {
	if raw.Empty() {
		return Metadata{}, false
	}

	p := toSlash(strings.TrimSpace(raw.Path))

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = IDFromPath(p)
	}
	if id == "" {
		id = strings.ReplaceAll(strings.TrimSpace(raw.Name), " ", "")
	}

	key := BaseName(p)
	if key == "" {
		key = BaseName(id)
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = InferName(key)
	}

	category := GenericCategory
	switch {
	case p != "":
		category = InferCategory(p)
	case raw.Category != "":
		category = strings.ToLower(raw.Category)
	}

	desc, tags := describe(key, category)
	if raw.Description != "" {
		desc = raw.Description
	}

	return Metadata{
		ID:          id,
		Name:        name,
		Category:    category,
		Description: desc,
		Tags:        tagSet(raw.Tags, tags, []string{category}),
		Path:        p,
	}, true
}
