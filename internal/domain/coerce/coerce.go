// Package coerce guarantees every scoring value exists and is finite.
package coerce

import (
	"github.com/okian/ecoscore/internal/domain/model"
)

// Column returns a copy of values where every NaN or infinite entry is
// replaced with def, plus the observed mask and the substitution count.
// A nil values slice stands for an absent column: n defaults are produced.
func Column(values []float64, n int, def float64) ([]float64, []bool, int) {
	if !model.Finite(def) {
		def = 0
	}
	if values == nil {
		out := make([]float64, n)
		for i := range out {
			out[i] = def
		}
		return out, make([]bool, n), n
	}

	out := make([]float64, len(values))
	observed := make([]bool, len(values))
	defaulted := 0
	for i, v := range values {
		if model.Finite(v) {
			out[i] = v
			observed[i] = true
			continue
		}
		out[i] = def
		defaulted++
	}
	return out, observed, defaulted
}

// Option applies a configuration option to the Coercer.
type Option func(*Coercer)

// WithDefaults sets the per-metric substitute values.
func WithDefaults(d model.MetricValues) Option {
	return func(c *Coercer) {
		c.defaults = d
	}
}

// Result holds the coerced joined data.
type Result struct {
	// Values are the finite raw values of each row, in row order.
	Values []model.MetricValues
	// Defaulted marks, per row, the metrics that received the default.
	Defaulted []model.MetricSet
	// Observed lists the finite source values of each metric; bounds are
	// calibrated from these only.
	Observed map[model.Metric][]float64
	// Counts is the number of substitutions per metric.
	Counts map[model.Metric]int
}

// Coercer applies Column to every metric of the joined rows.
type Coercer struct {
	defaults model.MetricValues
}

// New creates a Coercer. Defaults are 0 unless configured.
func New(opts ...Option) *Coercer {
	c := &Coercer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rows coerces the joined rows. The input is not modified.
func (c *Coercer) Rows(rows []model.JoinedRow) Result {
	res := Result{
		Values:    make([]model.MetricValues, len(rows)),
		Defaulted: make([]model.MetricSet, len(rows)),
		Observed:  make(map[model.Metric][]float64, 3),
		Counts:    make(map[model.Metric]int, 3),
	}
	for _, m := range model.Metrics() {
		raw := make([]float64, len(rows))
		for i, r := range rows {
			raw[i] = r.Values.Get(m)
		}
		values, observed, n := Column(raw, len(rows), c.defaults.Get(m))
		res.Counts[m] = n

		sample := make([]float64, 0, len(rows)-n)
		for i := range rows {
			res.Values[i].Set(m, values[i])
			if observed[i] {
				sample = append(sample, values[i])
			} else {
				res.Defaulted[i] = res.Defaulted[i].With(m)
			}
		}
		res.Observed[m] = sample
	}
	return res
}
