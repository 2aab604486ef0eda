// Package cli implements the ecoscore command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/ecoscore/internal/config"
	"github.com/okian/ecoscore/pkg/logger"
)

// Version is set at build time with -ldflags "-X github.com/okian/ecoscore/internal/cli.Version=...".
var Version = "dev" //nolint:gochecknoglobals // overridden by the linker

// app carries what the subcommands share once the root has loaded config.
type app struct {
	cfgFile string
	out     io.Writer
	errOut  io.Writer
	cfg     *config.Config
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "ecoscore",
		Short: "Eco-score catalog builder",
		Long: `ecoscore turns product, emissions, distance and biodiversity tables into a
static catalog where every product has an eco-score (0-100) and a grade.

QUICK START:

  $ ecoscore validate                 # Check the inputs, write nothing
  $ ecoscore build                    # Build the site into output_dir
  $ ecoscore serve                    # Preview the site and JSON API

CONFIGURATION (highest to lowest priority):

  1. Flags
  2. Environment variables (ECOSCORE_*, "__" for nesting)
  3. Config file (--config or ECOSCORE_CONFIG)
  4. Defaults (see 'ecoscore config show')`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("data-dir", "", "directory holding the source tables")
	flags.String("output", "", "output directory of the site")
	flags.String("base-url", "", "public root URL of the site")

	root.AddCommand(
		newBuildCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{ //nolint:gochecknoglobals // static mapping
	"log-level":  "log_level",
	"log-format": "log_format",
	"data-dir":   "data_dir",
	"output":     "output_dir",
	"base-url":   "base_url",
	"addr":       "addr",
}

// load reads the configuration, applies changed flags and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	ctx := cmd.Context()
	opts := []config.LoadOption{}
	if a.cfgFile != "" {
		opts = append(opts, config.WithFile(a.cfgFile))
	}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f != nil && f.Changed {
			opts = append(opts, config.WithOverride(key, f.Value.String()))
		}
	}

	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(a.errOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printDiagnostic(os.Stderr, err)
		return 1
	}
	return 0
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// No configuration is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			_, _ = io.WriteString(a.out, "ecoscore "+Version+"\n")
		},
	}
}
