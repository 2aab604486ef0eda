package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/ecoscore/internal/adapters/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		manifestPath string
		dir          string
		formats      []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write score exports from a published manifest",
		Long: `Read manifest.json from a published site and write the requested
exports. Nothing is rescored.`,
		Example: `  ecoscore export --format csv --format sqlite --dir artifacts`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if manifestPath == "" {
				manifestPath = filepath.Join(a.cfg.OutputDir, export.ManifestJSON)
			}
			if dir == "" {
				dir = a.cfg.OutputDir
			}
			parsed := make([]export.Format, 0, len(formats))
			for _, f := range formats {
				pf, err := export.ParseFormat(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, pf)
			}

			m, err := export.ReadManifest(manifestPath)
			if err != nil {
				return err
			}
			written, err := export.New(export.WithFormats(parsed...)).Write(cmd.Context(), dir, m)
			if err != nil {
				return err
			}
			for _, path := range written {
				okColor.Fprintf(a.out, "✓ Exported %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "manifest to read (default <output>/manifest.json)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory receiving the exports (default <output>)")
	cmd.Flags().StringSliceVar(&formats, "format", []string{"csv"}, "export formats: json, yaml, csv, sqlite")
	return cmd
}
