// Package service runs the build pipeline: it reads the source tables,
// validates and scores them, and publishes the site and exports.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ecoscore/internal/adapters/source"
	"github.com/okian/ecoscore/internal/domain/assemble"
	"github.com/okian/ecoscore/internal/domain/bounds"
	"github.com/okian/ecoscore/internal/domain/coerce"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/reconcile"
	"github.com/okian/ecoscore/internal/domain/scoring"
	"github.com/okian/ecoscore/internal/domain/validate"
	"github.com/okian/ecoscore/pkg/logger"
	"github.com/okian/ecoscore/pkg/metrics"
)

// Build outcomes reported to metrics.
const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

// ErrNoSources is returned when the builder has no input files.
var ErrNoSources = errors.New("no source files configured")

// Builder turns the four source tables into a manifest. It holds no state
// between builds.
type Builder struct {
	files       map[string]string
	reader      *source.Reader
	policy      reconcile.Policy
	columns     map[model.Metric]string
	qa          model.QARules
	defaults    model.MetricValues
	explicit    map[model.Metric]model.Bounds
	boundsOpts  []bounds.Option
	scoringOpts []scoring.Option
	baseURL     string
	meta        map[string]any
	now         func() time.Time
	newID       func() string
	logger      logger.Logger
}

// New constructs a Builder with the reference parameters unless overridden.
func New(opts ...Option) *Builder {
	b := &Builder{
		reader: source.NewReader(),
		policy: reconcile.PolicyStrict,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs every stage in order and returns the manifest of the build.
// The first schema, integrity, config or grade error aborts the build.
func (b *Builder) Build(ctx context.Context) (model.Manifest, error) {
	if b.logger == nil {
		b.logger = logger.Get().Named("build")
	}
	start := time.Now()

	m, err := b.build(ctx)
	if err != nil {
		metrics.RecordBuild(outcomeFailed)
		if kind := model.Kind(err); kind != "other" {
			metrics.RecordValidationFailure(kind, model.ErrorTable(err))
		}
		b.logger.Error(ctx, "build failed",
			logger.String("kind", model.Kind(err)),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return model.Manifest{}, err
	}

	metrics.RecordBuild(outcomeSuccess)
	metrics.MarkBuildSuccess(m.BuiltAt.Unix(), len(m.Records))
	for _, r := range m.Records {
		metrics.ObserveScore(r.Score)
	}
	for grade, n := range m.Stats.Grades {
		metrics.UpdateGradeRecords(grade, n)
	}
	b.logger.Info(ctx, "build finished",
		logger.String("build_id", m.BuildID),
		logger.Int("products", m.Stats.Products),
		logger.Any("grades", m.Stats.Grades),
		logger.Duration("elapsed", time.Since(start)))
	return m, nil
}

func (b *Builder) build(ctx context.Context) (model.Manifest, error) {
	if len(b.files) == 0 {
		return model.Manifest{}, ErrNoSources
	}
	// Weights and bands are checked before any input is read.
	if _, err := scoring.NewWeightedScorer(b.scoringOpts...); err != nil {
		return model.Manifest{}, err
	}
	builtAt := b.now().UTC()

	var tables model.Tables
	var sources []model.SourceInfo
	err := b.stage(ctx, "read", func() error {
		var err error
		tables, sources, err = b.reader.ReadAll(ctx, b.files)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		for _, s := range sources {
			metrics.UpdateSourceRows(s.Table, s.Rows)
			b.logger.Debug(ctx, "source loaded",
				logger.String("table", s.Table),
				logger.String("path", s.Path),
				logger.Int("rows", s.Rows),
				logger.String("sha256", s.SHA256))
		}
		return nil
	})
	if err != nil {
		return model.Manifest{}, err
	}

	var rec reconcile.Result
	if err := b.stage(ctx, "reconcile", func() error {
		var err error
		rec, err = reconcile.New(reconcile.WithPolicy(b.policy)).Reconcile(ctx, tables)
		if err != nil {
			return err
		}
		for table, alias := range rec.Renamed {
			b.logger.Info(ctx, "identifier column renamed", logger.String("table", table), logger.String("from", alias))
		}
		for _, table := range rec.Synthesized {
			b.logger.Warn(ctx, "synthetic identifiers assigned; rows cannot be joined", logger.String("table", table))
		}
		return nil
	}); err != nil {
		return model.Manifest{}, err
	}

	v := validate.New(validate.WithValueColumns(b.columns), validate.WithQARules(b.qa))

	var rows []model.JoinedRow
	var unmatched map[model.Metric]int
	if err := b.stage(ctx, "validate", func() error {
		ds, err := v.Tables(ctx, rec.Tables)
		if err != nil {
			return err
		}
		rows, unmatched = assemble.Join(ds)
		for _, m := range model.Metrics() {
			// Rows dropped for a blank identifier can never match a product.
			unmatched[m] += rec.Dropped[m.Table()]
			metrics.UpdateUnmatchedRows(m.Table(), unmatched[m])
			if unmatched[m] > 0 {
				b.logger.Warn(ctx, "metric rows without product",
					logger.String("table", m.Table()), logger.Int("rows", unmatched[m]))
			}
		}
		return v.QA(rows)
	}); err != nil {
		return model.Manifest{}, err
	}

	coerced := coerce.New(coerce.WithDefaults(b.defaults)).Rows(rows)
	for _, m := range model.Metrics() {
		metrics.UpdateCoercedValues(string(m), coerced.Counts[m])
	}

	resolved := bounds.New(append([]bounds.Option{bounds.WithExplicit(b.explicit)}, b.boundsOpts...)...).Resolve(coerced.Observed)
	for m, bd := range resolved {
		metrics.UpdateBounds(string(m), string(bd.Origin), bd.Min, bd.Max)
		if bd.Origin == model.OriginFallback {
			b.logger.Warn(ctx, "no observed values; fallback bounds used", logger.String("metric", string(m)))
		}
	}

	scorer, err := scoring.NewWeightedScorer(append(slices.Clone(b.scoringOpts), scoring.WithBounds(resolved))...)
	if err != nil {
		return model.Manifest{}, err
	}

	results := make([]scoring.Result, len(rows))
	if err := b.stage(ctx, "score", func() error {
		for i, row := range rows {
			res, err := scorer.Score(ctx, scoring.Input{ID: row.Product.ID, Values: coerced.Values[i]})
			if err != nil {
				return fmt.Errorf("score %s: %w", row.Product.ID, err)
			}
			if res.FellBack {
				b.logger.Warn(ctx, "no grade band qualifies; lowest assigned",
					logger.String("id", res.ID), logger.Float64("score", res.Score))
			}
			results[i] = res
		}
		return nil
	}); err != nil {
		return model.Manifest{}, err
	}

	records, err := assemble.New(assemble.WithBaseURL(b.baseURL)).Records(rows, coerced, results)
	if err != nil {
		return model.Manifest{}, err
	}

	bandsUsed := scorer.GradeBands()
	return model.Manifest{
		BuildID:    b.newID(),
		BuiltAt:    builtAt,
		Meta:       b.meta,
		Weights:    scorer.Weights(),
		Bounds:     scorer.Bounds(),
		GradeBands: bandsUsed,
		Sources:    sources,
		Stats:      assemble.Summarize(records, coerced.Counts, unmatched, bandsUsed),
		Records:    records,
	}, nil
}

// stage runs fn and records its duration.
func (b *Builder) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStageDuration(name, elapsed.Seconds())
	if err == nil {
		b.logger.Debug(ctx, "stage done", logger.String("stage", name), logger.Duration("elapsed", elapsed))
	}
	return err
}
