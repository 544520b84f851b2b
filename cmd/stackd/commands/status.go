package commands

import (
	"github.com/spf13/cobra"

	"github.com/stackdhq/stackd/cmd/stackd/handlers"
)

// Status returns the command reporting the outcome of the last run.
func Status() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the outcome of the last provisioning run",
		Long: `Report whether a provisioning run has started and finished on this host,
based on the marker files, and print the closing block of the most recent
run log.

With --remote, fetch the latest published status report from the
configured S3 bucket instead of reading local state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote {
				return handlers.RemoteStatus(cmd.Context(), cmd.OutOrStdout())
			}
			return handlers.Status(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the latest published status from the S3 bucket")

	return cmd
}
