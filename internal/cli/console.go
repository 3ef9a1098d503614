package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
)

// NewConsoleCommand creates the console command.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "console",
		Short:        "Run the interactive menu",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return entrypoint.RunConsole(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
