// Package telemetry holds the studio's Prometheus metrics and OpenTelemetry
// tracing helpers.
//
// Metrics are owned by a *Metrics value created per process and passed to
// the services that record into it. Every recording method is nil-safe, so
// services built without metrics (tests, library use) need no guards.
//
// Tracing uses the global OpenTelemetry tracer provider. Configure one in
// main before starting the server; without it spans are no-ops.
package telemetry
