// Package buildserver is the client for the external build/session server.
//
// The build server owns the editable workspace, bundles it and pushes
// change notifications. The studio treats it as a fixed contract:
//
//	POST /session/init                 {forceNew?} -> {sessionId, workspacePath, sessionPath}
//	GET  /session-file/{sid}/{path}    -> {success, content?}
//	PUT  /session-file/{sid}/{path}    {content} -> {success}
//	GET  /scan-components              -> {components: [...]}
//	WS   /events                       file-changed | rebuild-started | rebuild-completed
//
// Client covers the HTTP half. Stream subscribes to the event socket and
// reconnects with exponential backoff until its context is cancelled.
package buildserver
