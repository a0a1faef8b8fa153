package buildserver

import (
	"encoding/json"
	"fmt"
)

// RawComponent is one entry of the scan-components response as the server
// sent it. Any field may be empty.
type RawComponent struct {
	ID          string
	Name        string
	Path        string
	Category    string
	Description string
	Tags        []string
}

// Empty reports whether the entry carries nothing to identify it by.
func (r RawComponent) Empty() bool {
	return r.ID == "" && r.Path == "" && r.Name == ""
}

// decodeRawComponent reads an entry leniently. It fails only when the entry
// is not a JSON object.
func decodeRawComponent(raw json.RawMessage) (RawComponent, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return RawComponent{}, false
	}

	rc := RawComponent{
		ID:          stringField(fields, "id"),
		Name:        stringField(fields, "name"),
		Path:        stringField(fields, "path"),
		Category:    stringField(fields, "category"),
		Description: stringField(fields, "description"),
	}
	if rc.Path == "" {
		rc.Path = stringField(fields, "filePath")
	}

	switch tags := fields["tags"].(type) {
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok && s != "" {
				rc.Tags = append(rc.Tags, s)
			}
		}
	case string:
		if tags != "" {
			rc.Tags = []string{tags}
		}
	}
	return rc, true
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
