package config

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/ecoscore/internal/domain/model"
)

// Accepted enumerations.
const (
	GradeFallbackStrict = "strict"
	GradeFallbackLowest = "lowest"

	IdentifierPolicyStrict     = "strict"
	IdentifierPolicySynthesize = "synthesize"
)

// Validate checks ambient settings and converts every scoring parameter once
// so a bad configuration fails before any input is read.
func (c *Config) Validate(_ context.Context) error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level", c.LogLevel, "debug|info|warn|error")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid("log_format", c.LogFormat, "text|json")
	}
	if c.Addr == "" {
		return invalid("addr", `""`, "a listen address")
	}
	if c.OutputDir == "" {
		return invalid("output_dir", `""`, "a directory")
	}
	// The output directory is replaced wholesale on publish.
	if encloses(c.OutputDir, ".") || encloses(c.OutputDir, c.DataDir) {
		return invalid("output_dir", c.OutputDir, "a directory not containing the working or data directory")
	}
	if c.MaxSearchLimit <= 0 {
		return invalid("max_search_limit", c.MaxSearchLimit, "> 0")
	}
	switch c.Site.Lang {
	case "fr", "en":
	default:
		return invalid("site.lang", c.Site.Lang, "fr|en")
	}
	if c.Site.QRSize <= 0 {
		return invalid("site.qr_size", c.Site.QRSize, "> 0")
	}

	switch c.GradeFallback {
	case GradeFallbackStrict, GradeFallbackLowest:
	default:
		return &model.ConfigError{Field: "grade_fallback", Reason: fmt.Sprintf("must be strict or lowest, got %q", c.GradeFallback)}
	}
	switch c.IdentifierPolicy {
	case IdentifierPolicyStrict, IdentifierPolicySynthesize:
	default:
		return &model.ConfigError{Field: "identifier_policy", Reason: fmt.Sprintf("must be strict or synthesize, got %q", c.IdentifierPolicy)}
	}

	if _, err := c.ModelWeights(); err != nil {
		return err
	}
	if _, err := c.ExplicitBounds(); err != nil {
		return err
	}
	if _, err := c.Bands(); err != nil {
		return err
	}
	if _, err := c.MetricDefaults(); err != nil {
		return err
	}
	if _, err := c.QARules(); err != nil {
		return err
	}
	return nil
}

// encloses reports whether path is dir itself or lies below it.
func encloses(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ModelWeights returns the validated scoring weights.
func (c *Config) ModelWeights() (model.Weights, error) {
	w := model.Weights{
		Emissions:    c.Weights.Emissions,
		Distance:     c.Weights.Distance,
		Biodiversity: c.Weights.Biodiversity,
	}
	if err := w.Validate(c.WeightTolerance); err != nil {
		return model.Weights{}, err
	}
	return w, nil
}

// ExplicitBounds returns the configured [min, max] pairs. Metrics without an
// entry, or with a null entry, are absent from the map and get calibrated.
func (c *Config) ExplicitBounds() (map[model.Metric]model.Bounds, error) {
	out := make(map[model.Metric]model.Bounds)
	for _, key := range sortedKeys(c.Bounds) {
		pair := c.Bounds[key]
		field := "bounds." + key
		m, ok := model.ParseMetric(key)
		if !ok {
			return nil, &model.ConfigError{Field: field, Reason: "unknown metric"}
		}
		if pair == nil {
			continue
		}
		if len(pair) != 2 {
			return nil, &model.ConfigError{Field: field, Reason: fmt.Sprintf("want [min, max], got %d values", len(pair))}
		}
		if !model.Finite(pair[0]) || !model.Finite(pair[1]) {
			return nil, &model.ConfigError{Field: field, Reason: "bounds must be finite"}
		}
		out[m] = model.Bounds{Min: pair[0], Max: pair[1], Origin: model.OriginConfig}
	}
	return out, nil
}

// Bands returns the validated grade bands.
func (c *Config) Bands() (model.GradeBands, error) {
	raw := c.GradeBands
	if raw == nil {
		raw = defaultGradeBands()
	}
	bands := make(model.GradeBands, 0, len(raw))
	for i, entry := range raw {
		field := fmt.Sprintf("grade_bands[%d]", i)
		if len(entry) != 2 {
			return nil, &model.ConfigError{Field: field, Reason: fmt.Sprintf("want [label, cutoff], got %d values", len(entry))}
		}
		cutoff, err := toFloat(entry[1])
		if err != nil {
			return nil, &model.ConfigError{Field: field, Reason: err.Error()}
		}
		bands = append(bands, model.GradeBand{Label: fmt.Sprint(entry[0]), Cutoff: cutoff})
	}
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	return bands, nil
}

// MetricDefaults returns the value substituted for missing metric data.
func (c *Config) MetricDefaults() (model.MetricValues, error) {
	var out model.MetricValues
	for _, key := range sortedKeys(c.Defaults) {
		m, ok := model.ParseMetric(key)
		if !ok {
			return out, &model.ConfigError{Field: "defaults." + key, Reason: "unknown metric"}
		}
		v := c.Defaults[key]
		if !model.Finite(v) {
			return out, &model.ConfigError{Field: "defaults." + key, Reason: "must be finite"}
		}
		out.Set(m, v)
	}
	return out, nil
}

// QARules returns the optional quality rules.
func (c *Config) QARules() (model.QARules, error) {
	q := model.QARules{
		RequireComplete: c.QA.RequireComplete,
		MaxValues:       make(map[model.Metric]float64),
		Ranges:          make(map[model.Metric]model.Range),
	}
	for _, key := range sortedKeys(c.QA.MaxValues) {
		m, ok := model.ParseMetric(key)
		if !ok {
			return q, &model.ConfigError{Field: "qa.max_values." + key, Reason: "unknown metric"}
		}
		q.MaxValues[m] = c.QA.MaxValues[key]
	}
	for _, key := range sortedKeys(c.QA.Ranges) {
		field := "qa.ranges." + key
		m, ok := model.ParseMetric(key)
		if !ok {
			return q, &model.ConfigError{Field: field, Reason: "unknown metric"}
		}
		r := c.QA.Ranges[key]
		if len(r) != 2 || r[0] > r[1] {
			return q, &model.ConfigError{Field: field, Reason: "want [min, max] with min <= max"}
		}
		q.Ranges[m] = model.Range{Min: r[0], Max: r[1]}
	}
	return q, nil
}

// ValueColumns returns the preferred value column of each metric table.
func (c *Config) ValueColumns() map[model.Metric]string {
	return map[model.Metric]string{
		model.Emissions:    c.Columns.Emissions,
		model.Distance:     c.Columns.Distance,
		model.Biodiversity: c.Columns.Biodiversity,
	}
}

// SourceFiles maps every table name to its resolved path.
func (c *Config) SourceFiles() map[string]string {
	return map[string]string{
		model.TableProducts:        c.SourcePath(c.Sources.Products),
		model.Emissions.Table():    c.SourcePath(c.Sources.Emissions),
		model.Distance.Table():     c.SourcePath(c.Sources.Distance),
		model.Biodiversity.Table(): c.SourcePath(c.Sources.Biodiversity),
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("cutoff %q is not a number", x)
		}
		return f, nil
	}
	return math.NaN(), fmt.Errorf("cutoff %v is not a number", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
