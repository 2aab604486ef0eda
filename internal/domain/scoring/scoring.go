// Package scoring computes the weighted eco-score of a product and its grade.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/ecoscore/internal/domain/model"
)

// Scoring constants.
const (
	maxScoreValue = 100
	scoreScale    = 10 // one decimal
)

// Fallback decides what happens when a score is below every grade cutoff.
type Fallback string

const (
	// FallbackStrict fails with a GradeBandError.
	FallbackStrict Fallback = "strict"
	// FallbackLowest assigns the lowest band and flags the result.
	FallbackLowest Fallback = "lowest"
)

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithWeights sets the metric weights.
func WithWeights(w model.Weights) Option {
	return func(s *WeightedScorer) {
		s.weights = w
	}
}

// WithWeightTolerance sets the allowed |sum(weights) - 1|.
func WithWeightTolerance(tol float64) Option {
	return func(s *WeightedScorer) {
		s.tolerance = tol
	}
}

// WithBounds sets normalization bounds. Metrics missing from b keep the defaults.
func WithBounds(b model.BoundsSet) Option {
	return func(s *WeightedScorer) {
		for m, v := range b {
			s.bounds[m] = v
		}
	}
}

// WithGradeBands sets the grade table.
func WithGradeBands(bands model.GradeBands) Option {
	return func(s *WeightedScorer) {
		s.bands = append(model.GradeBands(nil), bands...)
	}
}

// WithFallback sets the grade fallback. Unknown values are ignored.
func WithFallback(f Fallback) Option {
	return func(s *WeightedScorer) {
		switch f {
		case FallbackStrict, FallbackLowest:
			s.fallback = f
		}
	}
}

// Input carries the coerced raw values of one product.
type Input struct {
	ID     string
	Values model.MetricValues
}

// Result contains the computed score of one product.
type Result struct {
	ID         string
	Score      float64
	Grade      string
	Impact     float64
	Normalized model.MetricValues
	// FellBack is set when the lowest band was assigned because no band qualified.
	FellBack bool
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// WeightedScorer implements Scorer as 100 * (1 - sum(weight * normalized)).
type WeightedScorer struct {
	weights   model.Weights
	tolerance float64
	bounds    model.BoundsSet
	bands     model.GradeBands
	fallback  Fallback
}

// NewWeightedScorer creates a scorer with the reference parameters unless
// overridden. Invalid weights or grade bands yield a ConfigError.
func NewWeightedScorer(opts ...Option) (*WeightedScorer, error) {
	s := &WeightedScorer{
		weights:   model.DefaultWeights(),
		tolerance: model.DefaultWeightTolerance,
		bounds:    model.DefaultBounds(),
		bands:     model.DefaultGradeBands(),
		fallback:  FallbackStrict,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.weights.Validate(s.tolerance); err != nil {
		return nil, err
	}
	if err := s.bands.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Score computes the composite score and grade for the given input.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	res := Result{ID: in.ID}
	for _, m := range model.Metrics() {
		b := s.bounds[m]
		n := Normalize(in.Values.Get(m), b.Min, b.Max)
		res.Normalized.Set(m, n)
		res.Impact += s.weights.Of(m) * n
	}
	res.Score = Round(maxScoreValue * (1 - res.Impact))
	res.Score = math.Max(0, math.Min(maxScoreValue, res.Score))

	grade, ok := Grade(res.Score, s.bands)
	if !ok {
		lowest := s.bands.Lowest()
		if s.fallback != FallbackLowest {
			return Result{}, &model.GradeBandError{Score: res.Score, Lowest: lowest.Cutoff}
		}
		grade = lowest.Label
		res.FellBack = true
	}
	res.Grade = grade
	return res, nil
}

// Bounds returns the bounds in use.
func (s *WeightedScorer) Bounds() model.BoundsSet {
	out := make(model.BoundsSet, len(s.bounds))
	for m, b := range s.bounds {
		out[m] = b
	}
	return out
}

// Weights returns the weights in use.
func (s *WeightedScorer) Weights() model.Weights { return s.weights }

// GradeBands returns a copy of the grade bands in use.
func (s *WeightedScorer) GradeBands() model.GradeBands {
	return append(model.GradeBands(nil), s.bands...)
}

// Normalize maps v onto [0, 1] relative to [lo, hi]. It returns 0 when the
// range is empty or v is NaN.
func Normalize(v, lo, hi float64) float64 {
	if !(hi > lo) || math.IsNaN(v) {
		return 0
	}
	x := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, x))
}

// Round rounds to one decimal, halves away from zero.
func Round(x float64) float64 {
	return math.Round(x*scoreScale) / scoreScale
}

// Grade returns the label of the first band whose cutoff is <= score.
// bands must be ordered by descending cutoff.
func Grade(score float64, bands model.GradeBands) (string, bool) {
	for _, b := range bands {
		if score >= b.Cutoff {
			return b.Label, true
		}
	}
	return "", false
}
