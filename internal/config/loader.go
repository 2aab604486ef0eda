package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables recognized by Load.
const (
	EnvPrefix     = "ECOSCORE_"
	EnvConfigFile = "ECOSCORE_CONFIG"
)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path      string
	overrides map[string]any
}

// WithFile loads the YAML file at path instead of $ECOSCORE_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithOverride sets a dotted key (e.g. "weights.emissions") above every
// other layer. Used for CLI flags.
func WithOverride(key string, value any) LoadOption {
	return func(o *loadOptions) {
		if key != "" {
			o.overrides[key] = value
		}
	}
}

// Load builds a Config by layering defaults, optional file, env vars and
// overrides. Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from WithFile or ECOSCORE_CONFIG
//  3. env (prefix ECOSCORE_, "__" separates nested keys)
//  4. overrides (WithOverride)
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{path: os.Getenv(EnvConfigFile), overrides: map[string]any{}}
	for _, opt := range opts {
		opt(&o)
	}

	base := New(ctx)
	k := koanf.New(".")

	if o.path != "" {
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, o.path, err)
		}
	}

	// ECOSCORE_WEIGHTS__EMISSIONS -> weights.emissions
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	for key, value := range o.overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("%w: override %s: %v", ErrLoadConfig, key, err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if cfg.GradeBands == nil {
		cfg.GradeBands = defaultGradeBands()
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SourcePath resolves a source file against DataDir.
func (c *Config) SourcePath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.DataDir == "" {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
