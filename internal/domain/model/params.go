package model

import (
	"fmt"
	"math"
	"strings"
)

// DefaultWeightTolerance bounds |sum(weights) - 1|.
const DefaultWeightTolerance = 0.001

// Weights are the per-metric fractions of the composite impact.
type Weights struct {
	Emissions    float64 `json:"emissions" yaml:"emissions"`
	Distance     float64 `json:"distance" yaml:"distance"`
	Biodiversity float64 `json:"biodiversity" yaml:"biodiversity"`
}

// DefaultWeights returns the reference weighting.
func DefaultWeights() Weights {
	return Weights{Emissions: 0.6, Distance: 0.2, Biodiversity: 0.2}
}

// Of returns the weight of m.
func (w Weights) Of(m Metric) float64 {
	return MetricValues(w).Get(m)
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Emissions + w.Distance + w.Biodiversity
}

// Validate checks every weight is finite and non-negative and that the
// weights sum to 1 within tolerance. Weights are never renormalized.
func (w Weights) Validate(tolerance float64) error {
	if !Finite(tolerance) || tolerance < 0 {
		return &ConfigError{Field: "weight_tolerance", Reason: fmt.Sprintf("must be a non-negative number, got %v", tolerance)}
	}
	for _, m := range Metrics() {
		v := w.Of(m)
		if !Finite(v) || v < 0 {
			return &ConfigError{Field: "weights." + string(m), Reason: fmt.Sprintf("must be a non-negative number, got %v", v)}
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > tolerance {
		return &ConfigError{Field: "weights", Reason: fmt.Sprintf("must sum to 1 (±%g), got %.6g", tolerance, sum)}
	}
	return nil
}

// BoundsOrigin records where a metric's bounds came from.
type BoundsOrigin string

const (
	OriginConfig     BoundsOrigin = "config"
	OriginPercentile BoundsOrigin = "percentile"
	OriginFallback   BoundsOrigin = "fallback"
)

// Bounds is the normalization range of one metric.
type Bounds struct {
	Min    float64      `json:"min" yaml:"min"`
	Max    float64      `json:"max" yaml:"max"`
	Origin BoundsOrigin `json:"origin" yaml:"origin"`
}

// Degenerate reports whether the range collapses every value to 0.
func (b Bounds) Degenerate() bool { return !(b.Max > b.Min) }

// BoundsSet holds the resolved bounds of every metric.
type BoundsSet map[Metric]Bounds

// DefaultBounds are the fixed reference ranges.
func DefaultBounds() BoundsSet {
	return BoundsSet{
		Emissions:    {Min: 0, Max: 10, Origin: OriginConfig},
		Distance:     {Min: 0, Max: 3000, Origin: OriginConfig},
		Biodiversity: {Min: 0, Max: 1, Origin: OriginConfig},
	}
}

// GradeBand maps scores at or above Cutoff to Label.
type GradeBand struct {
	Label  string  `json:"label" yaml:"label"`
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
}

// GradeBands is ordered by strictly descending cutoff.
type GradeBands []GradeBand

// DefaultGradeBands returns the A..E table.
func DefaultGradeBands() GradeBands {
	return GradeBands{{"A", 80}, {"B", 60}, {"C", 40}, {"D", 20}, {"E", 0}}
}

// Validate rejects empty tables, blank labels, non-finite cutoffs and any
// ordering other than strictly descending.
func (g GradeBands) Validate() error {
	if len(g) == 0 {
		return &ConfigError{Field: "grade_bands", Reason: "must not be empty"}
	}
	for i, b := range g {
		if strings.TrimSpace(b.Label) == "" {
			return &ConfigError{Field: fmt.Sprintf("grade_bands[%d]", i), Reason: "label must not be blank"}
		}
		if !Finite(b.Cutoff) {
			return &ConfigError{Field: fmt.Sprintf("grade_bands[%d]", i), Reason: fmt.Sprintf("cutoff must be finite, got %v", b.Cutoff)}
		}
		if i > 0 && !(b.Cutoff < g[i-1].Cutoff) {
			return &ConfigError{
				Field:  fmt.Sprintf("grade_bands[%d]", i),
				Reason: fmt.Sprintf("cutoffs must be strictly descending (%s %v after %s %v)", b.Label, b.Cutoff, g[i-1].Label, g[i-1].Cutoff),
			}
		}
	}
	return nil
}

// Lowest returns the band with the smallest cutoff. The table must be non-empty.
func (g GradeBands) Lowest() GradeBand { return g[len(g)-1] }

// Labels returns the band labels, highest first.
func (g GradeBands) Labels() []string {
	out := make([]string, len(g))
	for i, b := range g {
		out[i] = b.Label
	}
	return out
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether x lies within the range.
func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }

// QARules are optional data-quality checks applied to the joined data.
type QARules struct {
	RequireComplete bool
	MaxValues       map[Metric]float64
	Ranges          map[Metric]Range
}

// Empty reports whether no rule is configured.
func (q QARules) Empty() bool {
	return !q.RequireComplete && len(q.MaxValues) == 0 && len(q.Ranges) == 0
}
