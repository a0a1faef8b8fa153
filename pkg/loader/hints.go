package loader

import (
	"regexp"
	"strings"
)

// Hints are structural facts read from application source with pattern
// matching. They are a guess: commented-out code counts, and screens
// defined in other files are only seen through their imports.
type Hints struct {
	// Imports are the module specifiers of import statements.
	Imports []string `json:"imports"`

	// Screens are identifiers ending in "Screen", in order of appearance.
	Screens []string `json:"screens"`

	// Navigation reports whether the source uses a navigation library.
	Navigation bool `json:"navigation"`

	// Navigators are the navigator kinds created: "stack", "tabs", "drawer".
	Navigators []string `json:"navigators,omitempty"`
}

var (
	importPattern  = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{}\s,$]+?\s+from\s+)?['"]([^'"]+)['"]`)
	requirePattern = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	screenPattern  = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*Screen)\b`)
	navPattern     = regexp.MustCompile(`\b(NavigationContainer|useNavigation|navigation\.navigate|create\w*Navigator)\b`)

	navigatorKinds = []struct {
		kind    string
		pattern *regexp.Regexp
	}{
		{"stack", regexp.MustCompile(`\bcreate(?:Native)?StackNavigator\b`)},
		{"tabs", regexp.MustCompile(`\bcreate(?:Bottom|MaterialTop|Material)?TabNavigator\b`)},
		{"drawer", regexp.MustCompile(`\bcreateDrawerNavigator\b`)},
	}
)

// ParseHints extracts hints from source text.
func ParseHints(src string) Hints {
	h := Hints{Imports: []string{}, Screens: []string{}}

	seen := make(map[string]bool)
	addImport := func(spec string) {
		if !seen[spec] {
			seen[spec] = true
			h.Imports = append(h.Imports, spec)
		}
	}
	for _, m := range importPattern.FindAllStringSubmatch(src, -1) {
		addImport(m[1])
	}
	for _, m := range requirePattern.FindAllStringSubmatch(src, -1) {
		addImport(m[1])
	}

	screens := make(map[string]bool)
	for _, m := range screenPattern.FindAllStringSubmatch(src, -1) {
		name := m[1]
		if name == "Screen" || screens[name] {
			continue
		}
		screens[name] = true
		h.Screens = append(h.Screens, name)
	}

	h.Navigation = navPattern.MatchString(src)
	for _, spec := range h.Imports {
		if strings.HasPrefix(spec, "@react-navigation/") || strings.HasPrefix(spec, "react-navigation") {
			h.Navigation = true
		}
	}
	for _, nk := range navigatorKinds {
		if nk.pattern.MatchString(src) {
			h.Navigators = append(h.Navigators, nk.kind)
		}
	}
	return h
}
