// Package export serializes a build manifest: manifest.json, manifest.yaml,
// scores.csv and a SQLite database.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/ecoscore/internal/domain/model"
)

// Format names one export artifact.
type Format string

// Supported formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// File names of the artifacts.
const (
	ManifestJSON = "manifest.json"
	ManifestYAML = "manifest.yaml"
	ScoresCSV    = "scores.csv"
	ScoresDB     = "scores.db"
)

const fileMode = 0o644

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName returns the artifact file name of f.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return ManifestJSON
	case FormatYAML:
		return ManifestYAML
	case FormatCSV:
		return ScoresCSV
	case FormatSQLite:
		return ScoresDB
	}
	return string(f)
}

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithFormats adds formats to the export set. JSON is always written.
func WithFormats(formats ...Format) Option {
	return func(e *Exporter) {
		for _, f := range formats {
			e.formats[f] = true
		}
	}
}

// Exporter writes the enabled artifacts of a manifest into a directory.
type Exporter struct {
	formats map[Format]bool
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{formats: map[Format]bool{FormatJSON: true}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Formats returns the enabled formats in a stable order.
func (e *Exporter) Formats() []Format {
	var out []Format
	for _, f := range []Format{FormatJSON, FormatYAML, FormatCSV, FormatSQLite} {
		if e.formats[f] {
			out = append(out, f)
		}
	}
	return out
}

// Write writes every enabled artifact into dir and returns their paths.
func (e *Exporter) Write(ctx context.Context, dir string, m model.Manifest) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	var written []string
	for _, f := range e.Formats() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(dir, f.FileName())
		var err error
		switch f {
		case FormatJSON:
			err = WriteJSON(path, m)
		case FormatYAML:
			err = WriteYAML(path, m)
		case FormatCSV:
			err = WriteCSV(path, m.Records)
		case FormatSQLite:
			err = WriteSQLite(ctx, path, m)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteJSON writes m as indented JSON.
func WriteJSON(path string, m model.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: json: %v", ErrWrite, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), fileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// WriteYAML writes m as YAML.
func WriteYAML(path string, m model.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: yaml: %v", ErrWrite, err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteJSON.
func ReadManifest(path string) (model.Manifest, error) {
	var m model.Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("%w: %v", ErrReadManifest, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %s: %v", ErrReadManifest, path, err)
	}
	return m, nil
}
