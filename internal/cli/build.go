package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/ecoscore/internal/app"
)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Score the products and publish the site",
		Long: `Read the four source tables, validate and score them, then render the
site and exports into output_dir. The previous output is replaced only if
every file was written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := service.NewFromConfig(ctx, a.cfg)
			if err != nil {
				return err
			}
			p, err := service.PublisherFromConfig(ctx, a.cfg)
			if err != nil {
				return err
			}

			m, err := b.Build(ctx)
			if err != nil {
				return err
			}
			if err := p.Publish(ctx, a.cfg.OutputDir, m); err != nil {
				return err
			}

			okColor.Fprintf(a.out, "✓ Built %d products into %s\n", len(m.Records), a.cfg.OutputDir)
			faint.Fprintf(a.out, "  build %s\n", m.BuildID)
			printStats(a.out, m)
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the source tables without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := service.NewFromConfig(ctx, a.cfg)
			if err != nil {
				return err
			}
			m, err := b.Build(ctx)
			if err != nil {
				return err
			}
			okColor.Fprintf(a.out, "✓ Inputs are valid\n")
			printStats(a.out, m)
			return nil
		},
	}
}
