package service

import (
	"time"

	"github.com/okian/ecoscore/internal/adapters/source"
	"github.com/okian/ecoscore/internal/domain/bounds"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/reconcile"
	"github.com/okian/ecoscore/internal/domain/scoring"
	"github.com/okian/ecoscore/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithSources sets the table name to file path mapping.
func WithSources(files map[string]string) Option {
	return func(b *Builder) {
		b.files = files
	}
}

// WithReader sets the source reader.
func WithReader(r *source.Reader) Option {
	return func(b *Builder) {
		if r != nil {
			b.reader = r
		}
	}
}

// WithIdentifierPolicy sets how tables without an identifier column are handled.
func WithIdentifierPolicy(p reconcile.Policy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithValueColumns sets the preferred value column of each metric table.
func WithValueColumns(cols map[model.Metric]string) Option {
	return func(b *Builder) {
		b.columns = cols
	}
}

// WithQARules sets the post-join data-quality rules.
func WithQARules(q model.QARules) Option {
	return func(b *Builder) {
		b.qa = q
	}
}

// WithDefaults sets the values substituted for missing metric data.
func WithDefaults(d model.MetricValues) Option {
	return func(b *Builder) {
		b.defaults = d
	}
}

// WithBounds pins normalization bounds. Metrics absent from the map are
// calibrated from the data.
func WithBounds(explicit map[model.Metric]model.Bounds) Option {
	return func(b *Builder) {
		b.explicit = explicit
	}
}

// WithPercentiles sets the percentiles used to calibrate bounds.
func WithPercentiles(lower, upper float64) Option {
	return func(b *Builder) {
		b.boundsOpts = append(b.boundsOpts, bounds.WithPercentiles(lower, upper))
	}
}

// WithScoring adds scoring options (weights, bands, fallback).
func WithScoring(opts ...scoring.Option) Option {
	return func(b *Builder) {
		b.scoringOpts = append(b.scoringOpts, opts...)
	}
}

// WithBaseURL sets the public site root used for record URLs.
func WithBaseURL(base string) Option {
	return func(b *Builder) {
		b.baseURL = base
	}
}

// WithMeta sets the opaque metadata copied into the manifest.
func WithMeta(meta map[string]any) Option {
	return func(b *Builder) {
		b.meta = meta
	}
}

// WithClock sets the time source of build timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator sets the build id generator.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}
