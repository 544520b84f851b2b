package commands

import (
	"github.com/spf13/cobra"

	"github.com/stackdhq/stackd/cmd/stackd/handlers"
)

// Validate returns the command that resolves and prints the effective
// configuration without touching the host.
func Validate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Resolve and print the effective configuration",
		Long: `Resolve the configuration from the environment, validate it, and print
the effective values without provisioning anything. Secrets are masked.

Exits non-zero on any validation error, making this suitable as a
pre-flight check in image build pipelines.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.OutOrStdout())
		},
	}
}
