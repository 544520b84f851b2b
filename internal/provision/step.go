package provision

import (
	"context"

	"github.com/stackdhq/stackd/internal/logging"
)

// Step is one unit of provisioning work. Run receives a logger already
// tagged with the step's position so every line it emits carries the
// "[STEP n/total]" marker.
type Step struct {
	// Name is the stable identifier recorded in the run ledger.
	Name string
	// Foundational marks steps whose failure aborts the whole run.
	Foundational bool
	Run          func(ctx context.Context, rc *Context, log logging.Logger) error
}
