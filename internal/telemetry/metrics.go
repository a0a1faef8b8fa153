package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "studio").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a fresh prometheus.Registry
	Registry prometheus.Registerer
}

// MetricsOption configures the metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the Prometheus collectors for the studio runtime.
type Metrics struct {
	scansTotal        *prometheus.CounterVec
	catalogComponents prometheus.Gauge
	dropsTotal        *prometheus.CounterVec
	rendersTotal      *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	reloadsTotal      *prometheus.CounterVec
	loaderTiers       *prometheus.CounterVec
	streamMessages    *prometheus.CounterVec
	streamReconnects  prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	hostClients       prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "studio",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)
	ns, labels := config.Namespace, config.ConstLabels

	return &Metrics{
		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "scans_total",
			Help:        "Component scans by outcome",
			ConstLabels: labels,
		}, []string{"status"}),

		catalogComponents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "catalog_components",
			Help:        "Components in the current catalogue generation",
			ConstLabels: labels,
		}),

		dropsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "drops_total",
			Help:        "Drops by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "renders_total",
			Help:        "Preview renders by mode and outcome",
			ConstLabels: labels,
		}, []string{"mode", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Name:        "render_duration_seconds",
			Help:        "Preview render duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		reloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "reloads_total",
			Help:        "Hot reload notifications by disposition",
			ConstLabels: labels,
		}, []string{"disposition"}),

		loaderTiers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "loader_attempts_total",
			Help:        "App loader tier attempts by tier and outcome",
			ConstLabels: labels,
		}, []string{"tier", "status"}),

		streamMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "event_stream_messages_total",
			Help:        "Build server event stream messages by type",
			ConstLabels: labels,
		}, []string{"type"}),

		streamReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "event_stream_reconnects_total",
			Help:        "Build server event stream reconnections",
			ConstLabels: labels,
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "http_requests_total",
			Help:        "Studio API requests by route and status class",
			ConstLabels: labels,
		}, []string{"route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Name:        "http_request_duration_seconds",
			Help:        "Studio API request duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		hostClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "host_clients",
			Help:        "Connected host UI event clients",
			ConstLabels: labels,
		}),
	}
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// RecordScan records a scan outcome and the resulting catalogue size.
func (m *Metrics) RecordScan(ok bool, components int) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(status(ok)).Inc()
	m.catalogComponents.Set(float64(components))
}

// RecordDrop records a drop outcome: "accepted" or "rejected".
func (m *Metrics) RecordDrop(accepted bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.dropsTotal.WithLabelValues(outcome).Inc()
}

// RecordRender records a render attempt for mode.
func (m *Metrics) RecordRender(mode string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(mode, status(ok)).Inc()
	m.renderDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordReload records a hot reload notification disposition:
// "applied", "coalesced" or "skipped".
func (m *Metrics) RecordReload(disposition string) {
	if m == nil {
		return
	}
	m.reloadsTotal.WithLabelValues(disposition).Inc()
}

// RecordLoaderAttempt records one loader tier attempt.
func (m *Metrics) RecordLoaderAttempt(tier string, ok bool) {
	if m == nil {
		return
	}
	m.loaderTiers.WithLabelValues(tier, status(ok)).Inc()
}

// RecordStreamMessage records a received event stream message.
func (m *Metrics) RecordStreamMessage(msgType string) {
	if m == nil {
		return
	}
	m.streamMessages.WithLabelValues(msgType).Inc()
}

// RecordStreamReconnect records an event stream reconnection.
func (m *Metrics) RecordStreamReconnect() {
	if m == nil {
		return
	}
	m.streamReconnects.Inc()
}

// RecordHTTPRequest records an API request.
func (m *Metrics) RecordHTTPRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	class := "2xx"
	switch {
	case code >= 500:
		class = "5xx"
	case code >= 400:
		class = "4xx"
	case code >= 300:
		class = "3xx"
	}
	m.httpRequests.WithLabelValues(route, class).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SetHostClients sets the connected host UI client count.
func (m *Metrics) SetHostClients(n int) {
	if m == nil {
		return
	}
	m.hostClients.Set(float64(n))
}
