package buildserver

import (
	"encoding/json"

	"github.com/vango-dev/studio/internal/errors"
)

// EventType is the type of a build server event stream message.
type EventType string

const (
	EventFileChanged      EventType = "file-changed"
	EventRebuildStarted   EventType = "rebuild-started"
	EventRebuildCompleted EventType = "rebuild-completed"
)

// Event is one message of the build server event stream. Which fields are
// set depends on Type.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`

	// file-changed
	FilePath string `json:"filePath,omitempty"`

	// rebuild-started
	TriggerFile string `json:"triggerFile,omitempty"`

	// file-changed, rebuild-started; milliseconds since the epoch.
	Timestamp int64 `json:"timestamp,omitempty"`

	// rebuild-completed
	Success     bool            `json:"success,omitempty"`
	Duration    int64           `json:"duration,omitempty"`
	BuildResult json.RawMessage `json:"buildResult,omitempty"`
}

// BuildError extracts an error message from BuildResult, if the server
// reported one as {"error": "..."} or {"errors": ["...", ...]}.
func (e Event) BuildError() string {
	if len(e.BuildResult) == 0 {
		return ""
	}
	var result struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if json.Unmarshal(e.BuildResult, &result) != nil {
		return ""
	}
	if result.Error != "" {
		return result.Error
	}
	if len(result.Errors) > 0 {
		return result.Errors[0]
	}
	return ""
}

// ParseEvent decodes a stream message. Messages without a type are invalid;
// unknown types are returned as-is for the caller to ignore.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, errors.New("E244").Wrap(err)
	}
	if ev.Type == "" {
		return Event{}, errors.New("E244").WithDetail("message has no type")
	}
	return ev, nil
}

// Known reports whether the event type is one the studio reacts to.
func (t EventType) Known() bool {
	switch t {
	case EventFileChanged, EventRebuildStarted, EventRebuildCompleted:
		return true
	}
	return false
}
