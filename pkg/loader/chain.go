package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
)

// Tier is one load strategy.
type Tier interface {
	Name() string
	Load(ctx context.Context) (*App, error)
}

// Chain tries tiers in order.
type Chain struct {
	tiers   []Tier
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records tier outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Chain) {
		c.metrics = m
	}
}

// NewChain creates a chain over tiers. Nil tiers are skipped.
func NewChain(tiers []Tier, opts ...Option) *Chain {
	c := &Chain{logger: slog.Default()}
	for _, t := range tiers {
		if t != nil {
			c.tiers = append(c.tiers, t)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "loader")
	return c
}

// Tiers returns the tier names in order.
func (c *Chain) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name()
	}
	return names
}

// Load returns the first app a tier produces. It never panics; a panicking
// tier counts as failed.
func (c *Chain) Load(ctx context.Context) (res Result) {
	ctx, span := telemetry.StartSpan(ctx, "loader.load")
	defer func() {
		if res.App != nil {
			span.SetAttributes(attribute.String("studio.tier", res.App.Tier))
		}
		telemetry.EndSpan(span, res.Err)
	}()

	var last error
	for _, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}

		start := time.Now()
		app, err := c.try(ctx, tier)
		attempt := Attempt{Tier: tier.Name(), Err: err, Duration: time.Since(start)}
		res.Attempts = append(res.Attempts, attempt)
		c.metrics.RecordLoaderAttempt(tier.Name(), err == nil)

		if err == nil {
			if app.Tier == "" {
				app.Tier = tier.Name()
			}
			c.logger.Info("app loaded",
				"tier", app.Tier,
				"entry", app.Entry,
				"attempts", len(res.Attempts),
			)
			res.App = app
			return res
		}

		c.logger.Warn("loader tier failed",
			"tier", tier.Name(),
			"code", errors.Code(err),
			"error", err,
		)
		last = err
	}

	if last == nil {
		last = errors.New("E210").WithDetail("no loader tiers configured")
		res.Err = last
	} else {
		res.Err = errors.New("E210").Wrap(last)
	}
	c.logger.Error("app load failed", "attempts", len(res.Attempts), "error", res.Err)
	return res
}

func (c *Chain) try(ctx context.Context, tier Tier) (app *App, err error) {
	ctx, span := telemetry.StartSpan(ctx, "loader.tier", attribute.String("studio.tier", tier.Name()))
	defer func() {
		if r := recover(); r != nil {
			app = nil
			err = errors.New("E210").WithDetail(fmt.Sprintf("tier %s panicked: %v", tier.Name(), r))
		}
		telemetry.EndSpan(span, err)
	}()

	app, err = tier.Load(ctx)
	if err == nil && app == nil {
		err = errors.New("E210").WithDetail("tier " + tier.Name() + " returned no app")
	}
	return app, err
}
