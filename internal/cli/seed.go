package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
	"github.com/mrlokans/library/internal/storage/snapshot"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import books from a JSON or YAML snapshot",
		Long: `Import every book of a snapshot into the configured catalog, replacing
books with the same ID, then give each imported book marked unavailable a
placeholder loan so the catalog and loans agree.`,
		Example:      "  library seed --file data/books.json",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := snapshot.Load(file)
			if err != nil {
				return err
			}

			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			// The snapshot is imported explicitly below
			cfg.Bootstrap.SeedPath = ""

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app, err := entrypoint.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			if err := app.Catalog.Import(books); err != nil {
				return err
			}
			report, err := app.Reconciler.Bootstrap(ctx)
			app.ObserveReport("bootstrap", report, err)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books from %s, created %d placeholder loans\n",
				len(books), file, len(report.Repaired))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot to import (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
