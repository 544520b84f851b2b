package commands

import (
	"github.com/spf13/cobra"

	"github.com/stackdhq/stackd/cmd/stackd/handlers"
)

// Run returns the command performing a full provisioning pass.
//
// All configuration is read from the environment; there are no flags.
// Unknown environment variables are ignored, recognized ones override the
// built-in defaults.
func Run() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Provision the monitoring stack",
		Long: `Provision the monitoring stack.

Installs the container runtime if needed, generates credentials and
configuration under the install directory, then starts the service group
and waits for it to converge. Individual non-critical failures degrade the
outcome to PARTIAL_SUCCESS instead of aborting.

Examples:
  # Provision with built-in defaults
  stackd run

  # Provision into a custom directory with a custom dashboard port
  STACK_INSTALL_DIR=/srv/monitoring GRAFANA_PORT=8443 stackd run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context())
		},
	}
}
