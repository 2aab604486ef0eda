// Package config defines build configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Domain-level problems surface as model.ConfigError; loading problems
//   wrap this package's sentinel errors.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// DataDir is prepended to relative source paths.
	DataDir string `koanf:"data_dir" yaml:"data_dir"`

	// Sources names the four input files.
	Sources Sources `koanf:"sources" yaml:"sources"`

	// Columns names the value column of each metric table.
	Columns Columns `koanf:"columns" yaml:"columns"`

	// OutputDir receives the generated site and exports.
	OutputDir string `koanf:"output_dir" yaml:"output_dir"`

	// BaseURL is the public root of the site; product URLs are BaseURL/p/<slug>/.
	BaseURL string `koanf:"base_url" yaml:"base_url"`

	Weights         Weights `koanf:"weights" yaml:"weights"`
	WeightTolerance float64 `koanf:"weight_tolerance" yaml:"weight_tolerance"`

	// Bounds maps a metric to an explicit [min, max]. A null or missing
	// entry means the bounds are calibrated from the data.
	Bounds map[string][]float64 `koanf:"bounds" yaml:"bounds"`

	// GradeBands is a list of [label, cutoff] pairs, highest cutoff first.
	GradeBands [][]any `koanf:"grade_bands" yaml:"grade_bands"`

	// GradeFallback is "strict" or "lowest".
	GradeFallback string `koanf:"grade_fallback" yaml:"grade_fallback"`

	// IdentifierPolicy is "strict" or "synthesize".
	IdentifierPolicy string `koanf:"identifier_policy" yaml:"identifier_policy"`

	// Defaults maps a metric to the value substituted for missing data.
	Defaults map[string]float64 `koanf:"defaults" yaml:"defaults"`

	QA      QA      `koanf:"qa" yaml:"qa"`
	Site    Site    `koanf:"site" yaml:"site"`
	Exports Exports `koanf:"exports" yaml:"exports"`

	// MetricsFile, when set, receives a Prometheus textfile after each build.
	MetricsFile string `koanf:"metrics_file" yaml:"metrics_file"`

	// Addr configures the preview server listen address, e.g. ":9080".
	Addr string `koanf:"addr" yaml:"addr"`

	// MaxSearchLimit caps GET /api/products?limit.
	MaxSearchLimit int `koanf:"max_search_limit" yaml:"max_search_limit"`

	// Meta is copied verbatim into the manifest (data_source, method_version, ...).
	Meta map[string]any `koanf:"meta" yaml:"meta"`
}

// Sources names the input files, relative to DataDir unless absolute.
type Sources struct {
	Products     string `koanf:"products" yaml:"products"`
	Emissions    string `koanf:"emissions" yaml:"emissions"`
	Distance     string `koanf:"distance" yaml:"distance"`
	Biodiversity string `koanf:"biodiversity" yaml:"biodiversity"`
}

// Columns names the preferred value column per metric table.
type Columns struct {
	Emissions    string `koanf:"emissions" yaml:"emissions"`
	Distance     string `koanf:"distance" yaml:"distance"`
	Biodiversity string `koanf:"biodiversity" yaml:"biodiversity"`
}

// Weights mirrors model.Weights with koanf tags.
type Weights struct {
	Emissions    float64 `koanf:"emissions" yaml:"emissions"`
	Distance     float64 `koanf:"distance" yaml:"distance"`
	Biodiversity float64 `koanf:"biodiversity" yaml:"biodiversity"`
}

// QA holds the optional data-quality rules applied after the join.
type QA struct {
	RequireComplete bool                 `koanf:"require_complete" yaml:"require_complete"`
	MaxValues       map[string]float64   `koanf:"max_values" yaml:"max_values"`
	Ranges          map[string][]float64 `koanf:"ranges" yaml:"ranges"`
}

// Site configures the static site renderer.
type Site struct {
	Lang   string `koanf:"lang" yaml:"lang"`
	Year   int    `koanf:"year" yaml:"year"`
	QRSize int    `koanf:"qr_size" yaml:"qr_size"`
}

// Exports toggles the optional score exports. manifest.json is always written.
type Exports struct {
	CSV    bool `koanf:"csv" yaml:"csv"`
	YAML   bool `koanf:"yaml" yaml:"yaml"`
	SQLite bool `koanf:"sqlite" yaml:"sqlite"`
}

// New creates a Config holding the reference defaults. Context is accepted
// first to satisfy the project-wide convention.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:  "info",
		LogFormat: "text",
		DataDir:   "data",
		Sources: Sources{
			Products:     "products.csv",
			Emissions:    "agribalyse.csv",
			Distance:     "distances.csv",
			Biodiversity: "biodiv.csv",
		},
		Columns: Columns{
			Emissions:    "kgco2e_unit",
			Distance:     "distance_km",
			Biodiversity: "biodiversity_risk",
		},
		OutputDir:       "site",
		BaseURL:         "http://localhost:9080",
		Weights:         Weights{Emissions: 0.6, Distance: 0.2, Biodiversity: 0.2},
		WeightTolerance: 0.001,
		Bounds: map[string][]float64{
			"emissions":    {0, 10},
			"distance":     {0, 3000},
			"biodiversity": {0, 1},
		},
		GradeFallback:    "strict",
		IdentifierPolicy: "strict",
		Defaults: map[string]float64{
			"emissions":    0,
			"distance":     0,
			"biodiversity": 0,
		},
		Site: Site{
			Lang:   "fr",
			Year:   2025,
			QRSize: 256,
		},
		Exports: Exports{
			CSV: true,
		},
		Addr:           ":9080",
		MaxSearchLimit: 100,
		Meta: map[string]any{
			"method_version": "1.0",
		},
	}
	return c
}

// defaultGradeBands is applied when no configuration layer names grade_bands.
func defaultGradeBands() [][]any {
	return [][]any{{"A", 80}, {"B", 60}, {"C", 40}, {"D", 20}, {"E", 0}}
}
