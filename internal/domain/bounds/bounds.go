// Package bounds resolves the normalization range of each metric.
package bounds

import (
	"math"
	"sort"

	"github.com/okian/ecoscore/internal/domain/model"
)

// Default percentiles used when a metric has no explicit bounds.
const (
	DefaultLower = 5.0
	DefaultUpper = 95.0
)

// Percentile returns the p-th percentile (0..100) of the finite values,
// interpolating linearly between the closest ranks. ok is false when no
// finite value exists.
func Percentile(values []float64, p float64) (float64, bool) {
	s := make([]float64, 0, len(values))
	for _, v := range values {
		if model.Finite(v) {
			s = append(s, v)
		}
	}
	if len(s) == 0 {
		return 0, false
	}
	sort.Float64s(s)
	return sortedPercentile(s, p), true
}

func sortedPercentile(s []float64, p float64) float64 {
	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (rank-float64(lo))*(s[hi]-s[lo])
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithExplicit pins bounds for some metrics. They are used verbatim.
func WithExplicit(b map[model.Metric]model.Bounds) Option {
	return func(r *Resolver) {
		for m, v := range b {
			v.Origin = model.OriginConfig
			r.explicit[m] = v
		}
	}
}

// WithPercentiles changes the calibration percentiles.
func WithPercentiles(lower, upper float64) Option {
	return func(r *Resolver) {
		if lower >= 0 && upper <= 100 && lower < upper {
			r.lower, r.upper = lower, upper
		}
	}
}

// Resolver picks explicit bounds or calibrates them from the current build.
type Resolver struct {
	explicit map[model.Metric]model.Bounds
	lower    float64
	upper    float64
}

// New creates a Resolver. Without options every metric is calibrated.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		explicit: make(map[model.Metric]model.Bounds),
		lower:    DefaultLower,
		upper:    DefaultUpper,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns bounds for every metric. observed holds the finite source
// values of each metric; substituted defaults must not be included.
// An empty series falls back to (0, 1).
func (r *Resolver) Resolve(observed map[model.Metric][]float64) model.BoundsSet {
	out := make(model.BoundsSet, 3)
	for _, m := range model.Metrics() {
		if b, ok := r.explicit[m]; ok {
			out[m] = b
			continue
		}
		lo, ok := Percentile(observed[m], r.lower)
		if !ok {
			out[m] = model.Bounds{Min: 0, Max: 1, Origin: model.OriginFallback}
			continue
		}
		hi, _ := Percentile(observed[m], r.upper)
		out[m] = model.Bounds{Min: lo, Max: hi, Origin: model.OriginPercentile}
	}
	return out
}
