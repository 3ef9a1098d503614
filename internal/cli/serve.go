package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API together with the scheduled consistency check and
the background task workers. Stops gracefully on SIGINT or SIGTERM.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return entrypoint.Run(cfg, rootOpts.Version)
		},
	}
}
