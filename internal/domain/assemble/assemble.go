// Package assemble joins products with their metric rows and builds the
// scored records of a build.
package assemble

import (
	"fmt"
	"math"
	"strings"

	"github.com/gosimple/slug"

	"github.com/okian/ecoscore/internal/domain/coerce"
	"github.com/okian/ecoscore/internal/domain/dedupe"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/scoring"
)

// Join left-joins every product with the three metric tables on identifier.
// Every product appears exactly once, in input order; a missing metric row
// leaves NaN. Metric rows whose identifier is not a product are counted per
// metric as unmatched.
func Join(ds model.Dataset) ([]model.JoinedRow, map[model.Metric]int) {
	index := make(map[string]int, len(ds.Products))
	rows := make([]model.JoinedRow, len(ds.Products))
	for i, p := range ds.Products {
		index[p.ID] = i
		rows[i] = model.JoinedRow{
			Product: p,
			Values:  model.MetricValues{Emissions: math.NaN(), Distance: math.NaN(), Biodiversity: math.NaN()},
		}
	}

	unmatched := make(map[model.Metric]int, 3)
	for _, m := range model.Metrics() {
		unmatched[m] = 0
		for _, r := range ds.Sources[m] {
			i, ok := index[r.ID]
			if !ok {
				unmatched[m]++
				continue
			}
			rows[i].Values.Set(m, r.Value)
			rows[i].Matched = rows[i].Matched.With(m)
		}
	}
	return rows, unmatched
}

// Slug returns the URL slug of a product: the slugified "<id>-<name>".
func Slug(id, name string) string {
	return slug.Make(id + "-" + name)
}

// ProductURL returns the public page URL for slug under base.
func ProductURL(base, s string) string {
	return strings.TrimRight(base, "/") + "/p/" + s + "/"
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithBaseURL sets the site root used for record URLs.
func WithBaseURL(base string) Option {
	return func(a *Assembler) {
		a.baseURL = base
	}
}

// Assembler builds ScoredRecords. It has no side effects.
type Assembler struct {
	baseURL string
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Records builds one record per joined row, in row order. coerced and
// results must be index-aligned with rows. Slugs are made unique by
// appending -2, -3, ... to later collisions.
func (a *Assembler) Records(rows []model.JoinedRow, coerced coerce.Result, results []scoring.Result) ([]model.ScoredRecord, error) {
	if len(coerced.Values) != len(rows) || len(results) != len(rows) {
		return nil, fmt.Errorf("assemble: %d rows, %d coerced, %d scored", len(rows), len(coerced.Values), len(results))
	}

	slugs := dedupe.NewTracker(dedupe.WithCapacity(len(rows)))
	out := make([]model.ScoredRecord, len(rows))
	for i, row := range rows {
		s := uniqueSlug(slugs, Slug(row.Product.ID, row.Product.Name), i)
		rec := model.ScoredRecord{
			ID:         row.Product.ID,
			Name:       row.Product.Name,
			Slug:       s,
			URL:        ProductURL(a.baseURL, s),
			Score:      results[i].Score,
			Grade:      results[i].Grade,
			Normalized: results[i].Normalized,
		}
		rec.SetRaw(coerced.Values[i])
		for _, m := range model.Metrics() {
			if coerced.Defaulted[i].Has(m) {
				rec.Defaulted = append(rec.Defaulted, m)
			}
		}
		out[i] = rec
	}
	return out, nil
}

func uniqueSlug(seen dedupe.Tracker, base string, i int) string {
	if base == "" {
		base = fmt.Sprintf("product-%d", i+1)
	}
	s := base
	for n := 2; ; n++ {
		if _, dup := seen.SeenAndRecord(s, i); !dup {
			return s
		}
		s = fmt.Sprintf("%s-%d", base, n)
	}
}

// Summarize computes the build statistics.
func Summarize(records []model.ScoredRecord, defaulted, unmatched map[model.Metric]int, bands model.GradeBands) model.Stats {
	st := model.Stats{
		Products:  len(records),
		Defaulted: make(map[model.Metric]int, 3),
		Unmatched: make(map[model.Metric]int, 3),
		Grades:    make(map[string]int, len(bands)),
	}
	for _, m := range model.Metrics() {
		st.Defaulted[m] = defaulted[m]
		st.Unmatched[m] = unmatched[m]
	}
	for _, b := range bands {
		st.Grades[b.Label] = 0
	}
	for _, r := range records {
		st.Grades[r.Grade]++
	}
	return st
}
