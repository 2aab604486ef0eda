package model

// Product is a catalog item. Name falls back to ID when the source cell is blank.
type Product struct {
	ID   string
	Name string
	Line int
}

// MetricRow is one validated row of a metric table. Value is NaN when the
// cell was blank or "NaN"; the coercer substitutes the default later.
type MetricRow struct {
	ID    string
	Value float64
	Line  int
}

// Dataset is the typed result of validation: products in input order and the
// rows of each metric table in input order.
type Dataset struct {
	Products []Product
	Sources  map[Metric][]MetricRow
}

// ScoredRecord is the per-product output of a build.
type ScoredRecord struct {
	ID               string       `json:"id" yaml:"id"`
	Name             string       `json:"name" yaml:"name"`
	Slug             string       `json:"slug" yaml:"slug"`
	URL              string       `json:"url" yaml:"url"`
	Score            float64      `json:"score" yaml:"score"`
	Grade            string       `json:"grade" yaml:"grade"`
	BaseKgCO2e       float64      `json:"base_kgco2e" yaml:"base_kgco2e"`
	DistanceKm       float64      `json:"distance_km" yaml:"distance_km"`
	BiodiversityRisk float64      `json:"biodiversity_risk" yaml:"biodiversity_risk"`
	Normalized       MetricValues `json:"normalized" yaml:"normalized"`
	Defaulted        []Metric     `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
}

// Raw returns the coerced raw value of m.
func (r ScoredRecord) Raw(m Metric) float64 {
	return r.RawValues().Get(m)
}

// RawValues returns the three coerced raw values.
func (r ScoredRecord) RawValues() MetricValues {
	return MetricValues{Emissions: r.BaseKgCO2e, Distance: r.DistanceKm, Biodiversity: r.BiodiversityRisk}
}

// SetRaw stores the coerced raw values.
func (r *ScoredRecord) SetRaw(v MetricValues) {
	r.BaseKgCO2e = v.Emissions
	r.DistanceKm = v.Distance
	r.BiodiversityRisk = v.Biodiversity
}

// MetricSet is a small set of metrics.
type MetricSet uint8

func metricBit(m Metric) MetricSet {
	switch m {
	case Emissions:
		return 1
	case Distance:
		return 2
	case Biodiversity:
		return 4
	}
	return 0
}

// Has reports whether m is in the set.
func (s MetricSet) Has(m Metric) bool {
	bit := metricBit(m)
	return bit != 0 && s&bit != 0
}

// With returns the set plus m.
func (s MetricSet) With(m Metric) MetricSet { return s | metricBit(m) }

// JoinedRow is a product with the raw values of its matched metric rows.
// Values holds NaN for metrics the product had no row for, or a blank cell.
type JoinedRow struct {
	Product Product
	Values  MetricValues
	Matched MetricSet
}
