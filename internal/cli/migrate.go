package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/storage/backends"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the catalog from one backend to another",
		Long: `Copy every book from one catalog backend into another. Books already
present in the target are replaced by their source version; others are kept.`,
		Example:      "  library migrate --from csv --to sqlite",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == to {
				return fmt.Errorf("source and target backend are both %q", from)
			}
			if from == config.BackendMemory || to == config.BackendMemory {
				return fmt.Errorf("the memory backend does not persist and cannot be migrated")
			}

			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			source, sourceCloser, err := backends.OpenCatalog(from, cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open %s catalog: %w", from, err)
			}
			defer sourceCloser.Close()

			books, err := source.LoadAll()
			if err != nil {
				return fmt.Errorf("failed to read %s catalog: %w", from, err)
			}

			target, targetCloser, err := backends.OpenCatalog(to, cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open %s catalog: %w", to, err)
			}
			defer targetCloser.Close()

			if err := target.SaveAll(books); err != nil {
				return fmt.Errorf("failed to write %s catalog: %w", to, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d books from %s to %s\n", len(books), from, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source backend (csv, json or sqlite)")
	cmd.Flags().StringVar(&to, "to", "", "target backend (csv, json or sqlite)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
