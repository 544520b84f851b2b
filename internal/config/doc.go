// Package config resolves the provisioning configuration from the process
// environment.
//
// The orchestrator runs unattended as a boot-time payload and receives no
// command-line arguments, so the environment is its only customization
// surface. Resolution layers recognized environment overrides over built-in
// defaults into a single immutable Settings value, validated before any
// provisioning step runs. This package never touches disk or network.
package config
