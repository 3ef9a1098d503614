package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
	"github.com/mrlokans/library/internal/services"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Report books whose availability disagrees with their loans",
		Long: `Compare every book's availability flag with its open loans and list the
disagreements. With --repair, unavailable books without a loan get a
placeholder loan and available books with an open loan are marked
unavailable. Duplicate open loans and loans of deleted books are only
reported.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app, err := entrypoint.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			action, run := "check", app.Reconciler.Check
			if repair {
				action, run = "repair", app.Reconciler.Repair
			}
			report, err := run(ctx)
			app.ObserveReport(action, report, err)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "fix what can be fixed automatically")
	return cmd
}

func printReport(w io.Writer, report services.ConsistencyReport) {
	fmt.Fprintf(w, "Checked %d books and %d loans\n", report.CheckedBooks, report.CheckedLoans)
	for _, issue := range report.Repaired {
		fmt.Fprintf(w, "  repaired: %s\n", issue)
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(w, "  issue:    %s\n", issue)
	}
	if report.Consistent() {
		fmt.Fprintln(w, "Catalog and loans are consistent.")
	} else {
		fmt.Fprintf(w, "%d issue(s) need attention.\n", len(report.Issues))
	}
}
