// Package model contains domain models passed between pipeline stages.
package model

import (
	"math"
	"strconv"
	"strings"
)

// Metric names one of the three scored environmental indicators.
type Metric string

// The metric set is fixed; its order is the scoring and reporting order.
const (
	Emissions    Metric = "emissions"
	Distance     Metric = "distance"
	Biodiversity Metric = "biodiversity"
)

// TableProducts is the name of the products source table. Metric tables are
// named after their metric.
const TableProducts = "products"

// Metrics returns every metric in scoring order.
func Metrics() []Metric {
	return []Metric{Emissions, Distance, Biodiversity}
}

// ParseMetric maps a metric or table name to a Metric.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case Emissions:
		return Emissions, true
	case Distance:
		return Distance, true
	case Biodiversity:
		return Biodiversity, true
	}
	return "", false
}

// Table returns the source table name carrying this metric.
func (m Metric) Table() string { return string(m) }

// ExportColumn is the raw-value column name used in exports and the manifest.
func (m Metric) ExportColumn() string {
	switch m {
	case Emissions:
		return "base_kgco2e"
	case Distance:
		return "distance_km"
	case Biodiversity:
		return "biodiversity_risk"
	}
	return string(m)
}

// MetricValues holds one float per metric.
type MetricValues struct {
	Emissions    float64 `json:"emissions" yaml:"emissions"`
	Distance     float64 `json:"distance" yaml:"distance"`
	Biodiversity float64 `json:"biodiversity" yaml:"biodiversity"`
}

// Get returns the value for m, or NaN for an unknown metric.
func (v MetricValues) Get(m Metric) float64 {
	switch m {
	case Emissions:
		return v.Emissions
	case Distance:
		return v.Distance
	case Biodiversity:
		return v.Biodiversity
	}
	return math.NaN()
}

// Set stores x for m. Unknown metrics are ignored.
func (v *MetricValues) Set(m Metric, x float64) {
	switch m {
	case Emissions:
		v.Emissions = x
	case Distance:
		v.Distance = x
	case Biodiversity:
		v.Biodiversity = x
	}
}

// ParseValue parses a metric cell. Blank cells and "NaN" yield NaN with ok
// set; any other text that is not a number yields ok == false.
func ParseValue(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
