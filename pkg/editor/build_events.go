package editor

import (
	"github.com/vango-dev/studio/pkg/buildserver"
	"github.com/vango-dev/studio/pkg/preview"
)

// HandleBuildEvent reacts to one build server event. File changes of the
// current session are queued for hot reload. Rebuild events update the
// session's bundle status and are forwarded to the host.
func (e *Editor) HandleBuildEvent(ev buildserver.Event) {
	switch ev.Type {
	case buildserver.EventFileChanged:
		if !e.currentSession(ev.SessionID) {
			e.logger.Debug("ignoring change of another session", "session", ev.SessionID, "file", ev.FilePath)
			return
		}
		if !e.cfg.HotReloadEnabled() {
			e.logger.Debug("hot reload disabled", "file", ev.FilePath)
			return
		}
		e.reloader.Notify(preview.Notice{
			SessionID: ev.SessionID,
			FilePath:  ev.FilePath,
			Timestamp: ev.Timestamp,
		})

	case buildserver.EventRebuildStarted:
		e.logger.Info("rebuild started", "session", ev.SessionID, "trigger", ev.TriggerFile)
		e.events.Emit(preview.Event{Type: preview.EventRebuild, Detail: preview.RebuildDetail{
			Phase:       "started",
			SessionID:   ev.SessionID,
			TriggerFile: ev.TriggerFile,
		}})

	case buildserver.EventRebuildCompleted:
		buildErr := ev.BuildError()
		applied := e.sessions.ApplyBuild(ev.SessionID, ev.Success, buildErr)
		success := ev.Success
		e.events.Emit(preview.Event{Type: preview.EventRebuild, Detail: preview.RebuildDetail{
			Phase:     "completed",
			SessionID: ev.SessionID,
			Success:   &success,
			Duration:  ev.Duration,
			Error:     buildErr,
		}})
		if !applied {
			e.logger.Debug("rebuild of another session", "session", ev.SessionID)
			return
		}
		if !success {
			e.logger.Warn("rebuild failed", "session", ev.SessionID, "error", buildErr)
			return
		}
		e.logger.Info("rebuild completed", "session", ev.SessionID, "duration_ms", ev.Duration)
		if e.cfg.HotReloadEnabled() {
			e.reloader.Notify(preview.Notice{SessionID: ev.SessionID})
		}

	default:
		e.logger.Debug("ignoring build event", "type", ev.Type)
	}
}

// currentSession reports whether an event for sessionID concerns the
// current session. Events without a session id concern every session.
func (e *Editor) currentSession(sessionID string) bool {
	if sessionID == "" {
		return true
	}
	info, ok := e.sessions.Current()
	return ok && info.SessionID == sessionID
}
