package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Memory bool
	CSV    bool
	JSON   bool
	SQLite bool

	Version string
}

// NewRootCommand creates the root command for the library CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:     "library",
		Short:   "Digital library catalog and lending",
		Long:    "Manage a book catalog, library members and loans from a console menu or an HTTP API.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.catalogBackend(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "keep the catalog in memory only")
	cmd.PersistentFlags().BoolVar(&opts.CSV, "csv", false, "store the catalog in a CSV file")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "store the catalog in a JSON file")
	cmd.PersistentFlags().BoolVar(&opts.SQLite, "sqlite", false, "store the catalog in SQLite")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewConsoleCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// Execute runs the root command against os.Args.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// catalogBackend returns the backend picked by flag, or "" when none was given.
func (o *RootOptions) catalogBackend() (string, error) {
	chosen := ""
	for name, set := range map[string]bool{
		config.BackendMemory: o.Memory,
		config.BackendCSV:    o.CSV,
		config.BackendJSON:   o.JSON,
		config.BackendSQLite: o.SQLite,
	} {
		if !set {
			continue
		}
		if chosen != "" {
			return "", fmt.Errorf("only one of --memory, --csv, --json and --sqlite may be given")
		}
		chosen = name
	}
	return chosen, nil
}

// loadConfig reads the environment and applies the backend flag on top.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	backend, err := o.catalogBackend()
	if err != nil {
		return nil, err
	}
	cfg := config.NewConfig()
	if backend != "" {
		cfg.Storage.CatalogBackend = backend
	}
	return cfg, nil
}
