// Package main is the entry point for the stackd provisioner.
//
// stackd turns a fresh cloud instance into a running monitoring stack
// (metrics collector, time-series database, dashboard) on first boot,
// without any interactive input. It is designed to run once from
// cloud-init or a systemd unit; running it again converges the host to the
// same state.
//
// Commands: run (default), validate, status, version.
//
// For detailed usage information, run:
//
//	stackd --help
package main

import (
	"fmt"
	"os"

	"github.com/stackdhq/stackd/cmd/stackd/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
