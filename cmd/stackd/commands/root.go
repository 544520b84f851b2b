// Package commands defines the CLI command structure.
//
// This package contains cobra command definitions that handle argument
// parsing and command wiring. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/stackdhq/stackd/cmd/stackd/handlers"
)

// Root returns the root command for the stackd CLI.
//
// Invoking the binary with no subcommand runs a full provisioning pass,
// because the boot integration calls the bare binary.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackd",
		Short: "Provision a host monitoring stack on first boot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context())
		},
	}

	cmd.AddCommand(Run())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Status())
	cmd.AddCommand(Version())

	return cmd
}
