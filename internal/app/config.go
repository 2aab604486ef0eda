package service

import (
	"context"

	"github.com/okian/ecoscore/internal/adapters/export"
	"github.com/okian/ecoscore/internal/adapters/site"
	"github.com/okian/ecoscore/internal/config"
	"github.com/okian/ecoscore/internal/domain/reconcile"
	"github.com/okian/ecoscore/internal/domain/scoring"
)

// NewFromConfig builds a Builder from configuration. Extra options are
// applied last.
func NewFromConfig(_ context.Context, cfg *config.Config, opts ...Option) (*Builder, error) {
	explicit, err := cfg.ExplicitBounds()
	if err != nil {
		return nil, err
	}
	bands, err := cfg.Bands()
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.MetricDefaults()
	if err != nil {
		return nil, err
	}
	qa, err := cfg.QARules()
	if err != nil {
		return nil, err
	}
	weights, err := cfg.ModelWeights()
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithSources(cfg.SourceFiles()),
		WithIdentifierPolicy(reconcile.Policy(cfg.IdentifierPolicy)),
		WithValueColumns(cfg.ValueColumns()),
		WithQARules(qa),
		WithDefaults(defaults),
		WithBounds(explicit),
		WithBaseURL(cfg.BaseURL),
		WithMeta(cfg.Meta),
		WithScoring(
			scoring.WithWeights(weights),
			scoring.WithWeightTolerance(cfg.WeightTolerance),
			scoring.WithGradeBands(bands),
			scoring.WithFallback(scoring.Fallback(cfg.GradeFallback)),
		),
	}
	return New(append(base, opts...)...), nil
}

// PublisherFromConfig builds a Publisher from configuration.
func PublisherFromConfig(_ context.Context, cfg *config.Config, opts ...PublisherOption) (*Publisher, error) {
	r, err := site.NewRenderer(
		site.WithLang(cfg.Site.Lang),
		site.WithYear(cfg.Site.Year),
		site.WithQRSize(cfg.Site.QRSize),
	)
	if err != nil {
		return nil, err
	}

	var formats []export.Format
	if cfg.Exports.YAML {
		formats = append(formats, export.FormatYAML)
	}
	if cfg.Exports.CSV {
		formats = append(formats, export.FormatCSV)
	}
	if cfg.Exports.SQLite {
		formats = append(formats, export.FormatSQLite)
	}

	base := []PublisherOption{
		WithExporter(export.New(export.WithFormats(formats...))),
		WithMetricsFile(cfg.MetricsFile),
	}
	return NewPublisher(r, append(base, opts...)...), nil
}
