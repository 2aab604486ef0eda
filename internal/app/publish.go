package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ecoscore/internal/adapters/export"
	"github.com/okian/ecoscore/internal/adapters/site"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/pkg/logger"
	"github.com/okian/ecoscore/pkg/metrics"
)

// Publisher writes the outputs of a build.
type Publisher struct {
	renderer    *site.Renderer
	exporter    *export.Exporter
	metricsFile string
	logger      logger.Logger
}

// PublisherOption applies a configuration option to the Publisher.
type PublisherOption func(*Publisher)

// WithExporter sets the export artifacts written next to the site.
func WithExporter(e *export.Exporter) PublisherOption {
	return func(p *Publisher) {
		if e != nil {
			p.exporter = e
		}
	}
}

// WithMetricsFile dumps the Prometheus registry to path after publishing.
func WithMetricsFile(path string) PublisherOption {
	return func(p *Publisher) {
		p.metricsFile = path
	}
}

// WithPublisherLogger sets a custom logger for the publisher.
func WithPublisherLogger(l logger.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a Publisher rendering with r.
func NewPublisher(r *site.Renderer, opts ...PublisherOption) *Publisher {
	p := &Publisher{renderer: r, exporter: export.New()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish renders the site and writes the exports for m into dir. Nothing
// in dir changes unless every file was written.
func (p *Publisher) Publish(ctx context.Context, dir string, m model.Manifest) error {
	if p.logger == nil {
		p.logger = logger.Get().Named("publish")
	}
	start := time.Now()

	var written []string
	err := site.Publish(dir, func(staging string) error {
		if err := p.renderer.Render(ctx, staging, m); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		var err error
		if written, err = p.exporter.Write(ctx, staging, m); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		return nil
	})
	metrics.RecordStageDuration("publish", time.Since(start).Seconds())
	if err != nil {
		return err
	}

	p.logger.Info(ctx, "site published",
		logger.String("dir", dir),
		logger.Int("pages", len(m.Records)+1),
		logger.Int("exports", len(written)),
		logger.Duration("elapsed", time.Since(start)))

	if p.metricsFile != "" {
		if err := metrics.WriteTextfile(p.metricsFile); err != nil {
			p.logger.Warn(ctx, "metrics textfile not written", logger.String("path", p.metricsFile), logger.Error(err))
		}
	}
	return nil
}
