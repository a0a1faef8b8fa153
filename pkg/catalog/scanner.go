package catalog

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
)

// Scanner discovers components from a Source and publishes them to a
// Registry.
type Scanner struct {
	source   Source
	registry *Registry
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records scan outcomes.
func WithMetrics(m *telemetry.Metrics) ScannerOption {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// NewScanner creates a scanner publishing to registry.
func NewScanner(source Source, registry *Registry, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		source:   source,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scanner")
	return s
}

// Registry returns the registry the scanner publishes to.
func (s *Scanner) Registry() *Registry {
	return s.registry
}

// Scan lists the source's components. It never fails: a source error is
// logged and yields an empty, non-nil slice. Duplicate ids keep the last
// entry.
func (s *Scanner) Scan(ctx context.Context) []Metadata {
	metas, _ := s.scan(ctx)
	return metas
}

// Refresh scans and installs the result as a new registry generation. When
// the source fails the current generation is kept. Refresh returns the
// number of registered components.
func (s *Scanner) Refresh(ctx context.Context) int {
	metas, err := s.scan(ctx)
	if err != nil {
		return s.registry.Len()
	}
	gen := s.registry.Replace(metas)
	s.logger.Info("catalogue refreshed",
		"components", len(metas),
		"generation", gen,
	)
	return len(metas)
}

func (s *Scanner) scan(ctx context.Context) (metas []Metadata, err error) {
	ctx, span := telemetry.StartSpan(ctx, "catalog.scan",
		attribute.String("studio.source", s.source.Name()),
	)
	start := time.Now()
	defer func() {
		span.SetAttributes(attribute.Int("studio.components", len(metas)))
		telemetry.EndSpan(span, err)
		s.metrics.RecordScan(err == nil, len(metas))
	}()

	raws, err := s.source.Components(ctx)
	if err != nil {
		err = errors.New("E200").Wrap(err).WithSource(s.source.Name())
		s.logger.Error("component scan failed",
			"code", "E200",
			"source", s.source.Name(),
			"error", err,
		)
		return []Metadata{}, err
	}

	index := make(map[string]int, len(raws))
	metas = make([]Metadata, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		meta, ok := Normalize(raw)
		if !ok {
			skipped++
			continue
		}
		if i, dup := index[meta.ID]; dup {
			metas[i] = meta
			continue
		}
		index[meta.ID] = len(metas)
		metas = append(metas, meta)
	}

	s.logger.Debug("scan complete",
		"source", s.source.Name(),
		"components", len(metas),
		"skipped", skipped,
		"duration", time.Since(start),
	)
	return metas, nil
}
