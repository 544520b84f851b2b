package provision

import (
	"context"

	"github.com/stackdhq/stackd/internal/config"
	"github.com/stackdhq/stackd/internal/installer"
	"github.com/stackdhq/stackd/internal/logging"
)

// RuntimeEnsurer installs and starts the container runtime if needed.
type RuntimeEnsurer interface {
	Ensure(ctx context.Context) error
}

// StackValidator starts the service stack and drives it to convergence.
type StackValidator interface {
	Run(ctx context.Context) error
}

// State carries the values produced by earlier steps for later ones.
// It is mutable where Settings is not: everything the operator chose is
// frozen at resolution time, everything the run discovers lands here.
type State struct {
	Platform installer.Platform

	InfluxDBPassword string
	GrafanaPassword  string
	// InfluxDBGenerated and GrafanaGenerated record whether the
	// corresponding password was generated this run rather than supplied
	// through the environment.
	InfluxDBGenerated bool
	GrafanaGenerated  bool
}

// Context is the shared dependency bundle handed to every step. All
// side-effecting collaborators are injected so step behavior is testable
// without a container runtime on the host.
type Context struct {
	Settings *config.Settings
	State    *State

	Log logging.Logger

	// DetectPlatform identifies the host OS family.
	DetectPlatform func() (installer.Platform, error)
	// NewInstaller builds the runtime installer once the platform is known.
	NewInstaller func(platform installer.Platform) RuntimeEnsurer
	// Validator brings the stack up and verifies convergence.
	Validator StackValidator
	// GenerateSecret produces a random credential of at least the given
	// length.
	GenerateSecret func(minLength int) (string, error)
}
