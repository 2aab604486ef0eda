package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/ecoscore/internal/config"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "site")
				convey.So(cfg.Weights.Emissions, convey.ShouldEqual, 0.6)
				convey.So(cfg.GradeBands, convey.ShouldHaveLength, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ECOSCORE_LOG_LEVEL", "debug")
			_ = os.Setenv("ECOSCORE_WEIGHTS__EMISSIONS", "0.5")
			_ = os.Setenv("ECOSCORE_WEIGHTS__DISTANCE", "0.3")
			_ = os.Setenv("ECOSCORE_SITE__LANG", "en")
			_ = os.Setenv("ECOSCORE_SITE__QR_SIZE", "128")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then nested keys should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Weights.Emissions, convey.ShouldEqual, 0.5)
				convey.So(cfg.Weights.Distance, convey.ShouldEqual, 0.3)
				convey.So(cfg.Weights.Biodiversity, convey.ShouldEqual, 0.2)
				convey.So(cfg.Site.Lang, convey.ShouldEqual, "en")
				convey.So(cfg.Site.QRSize, convey.ShouldEqual, 128)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
data_dir: fixtures
output_dir: public
base_url: https://example.org/eco
bounds:
  distance: [0, 500]
grade_bands:
  - [A, 90]
  - [B, 50]
  - [C, 0]
grade_fallback: lowest
qa:
  require_complete: true
meta:
  data_source: agribalyse-3.1
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ECOSCORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "fixtures")
				convey.So(cfg.OutputDir, convey.ShouldEqual, "public")
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://example.org/eco")
				convey.So(cfg.GradeFallback, convey.ShouldEqual, config.GradeFallbackLowest)
				convey.So(cfg.QA.RequireComplete, convey.ShouldBeTrue)
				convey.So(cfg.Meta["data_source"], convey.ShouldEqual, "agribalyse-3.1")
				convey.So(cfg.Meta["method_version"], convey.ShouldEqual, "1.0")
			})

			convey.Convey("And map entries should merge with the defaults", func() {
				bounds, berr := cfg.ExplicitBounds()
				convey.So(berr, convey.ShouldBeNil)
				convey.So(bounds[model.Distance].Max, convey.ShouldEqual, 500)
				convey.So(bounds[model.Emissions].Max, convey.ShouldEqual, 10)
			})

			convey.Convey("And the grade bands should replace the defaults", func() {
				bands, berr := cfg.Bands()
				convey.So(berr, convey.ShouldBeNil)
				convey.So(bands.Labels(), convey.ShouldResemble, []string{"A", "B", "C"})
				convey.So(bands[0].Cutoff, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When meta holds nested mappings", func() {
			tmpFile := createTempConfigFile(`
meta:
  method_version: "2.0"
  data_source:
    agribalyse: "3.1"
    distances: internal survey
`)
			defer func() { _ = os.Remove(tmpFile) }()
			clearConfigEnvVars()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then they should be kept as loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Meta["method_version"], convey.ShouldEqual, "2.0")
				convey.So(cfg.Meta["data_source"], convey.ShouldResemble, map[string]any{
					"agribalyse": "3.1",
					"distances":  "internal survey",
				})
			})
		})

		convey.Convey("When env and overrides sit above the file", func() {
			tmpFile := createTempConfigFile("output_dir: from-file\nlog_level: warn\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ECOSCORE_OUTPUT_DIR", "from-env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx,
				config.WithFile(tmpFile),
				config.WithOverride("log_level", "error"),
			)

			convey.Convey("Then the highest layer should win per key", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "from-env")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("ECOSCORE_CONFIG", "/nonexistent/ecoscore.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML is malformed", func() {
			tmpFile := createTempConfigFile("weights: [unterminated\n")
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the weights from the file do not sum to 1", func() {
			tmpFile := createTempConfigFile("weights:\n  emissions: 0.2\n  distance: 0.2\n  biodiversity: 0.2\n")
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then it should return a ConfigError", func() {
				var ce *model.ConfigError
				convey.So(errors.As(err, &ce), convey.ShouldBeTrue)
				convey.So(ce.Field, convey.ShouldEqual, "weights")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("ECOSCORE_LOG_LEVEL", "loud")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ECOSCORE_CONFIG",
		"ECOSCORE_LOG_LEVEL",
		"ECOSCORE_OUTPUT_DIR",
		"ECOSCORE_WEIGHTS__EMISSIONS",
		"ECOSCORE_WEIGHTS__DISTANCE",
		"ECOSCORE_SITE__LANG",
		"ECOSCORE_SITE__QR_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "ecoscore-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
