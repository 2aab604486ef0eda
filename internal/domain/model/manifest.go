package model

import "time"

// Manifest describes one build: its parameters, inputs, statistics and records.
type Manifest struct {
	BuildID    string         `json:"build_id" yaml:"build_id"`
	BuiltAt    time.Time      `json:"built_at" yaml:"built_at"`
	Meta       map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	Weights    Weights        `json:"weights" yaml:"weights"`
	Bounds     BoundsSet      `json:"bounds" yaml:"bounds"`
	GradeBands GradeBands     `json:"grade_bands" yaml:"grade_bands"`
	Sources    []SourceInfo   `json:"sources" yaml:"sources"`
	Stats      Stats          `json:"stats" yaml:"stats"`
	Records    []ScoredRecord `json:"records" yaml:"records"`
}

// Stats summarizes data quality and the grade distribution of a build.
type Stats struct {
	Products  int            `json:"products" yaml:"products"`
	Defaulted map[Metric]int `json:"defaulted" yaml:"defaulted"`
	Unmatched map[Metric]int `json:"unmatched" yaml:"unmatched"`
	Grades    map[string]int `json:"grades" yaml:"grades"`
}
