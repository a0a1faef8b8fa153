// Package server exposes an Editor over HTTP.
//
// The JSON API under /api drives the catalog, the session, drag and drop
// and the preview renderer. /preview serves the phone surface as HTML,
// /_studio/events pushes host events over a WebSocket and /metrics serves
// Prometheus metrics. Failures are reported as {"error": ..., "code": ...}
// with a status derived from the error code.
package server
