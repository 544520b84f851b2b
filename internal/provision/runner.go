package provision

import (
	"context"
	"time"

	"github.com/stackdhq/stackd/internal/logging"
)

// Result is the outcome of a full run.
type Result struct {
	Status RunStatus
	Ledger *Ledger
	// Aborted reports whether a foundational failure cut the run short.
	Aborted bool
}

// Runner executes steps in order and owns the continue-vs-abort decision.
type Runner struct {
	Steps []Step
	Log   logging.Logger
}

func NewRunner(steps []Step, log logging.Logger) *Runner {
	return &Runner{Steps: steps, Log: log}
}

// Run executes every step in sequence. Non-foundational failures are
// recorded and skipped over; a foundational failure stops the run at once
// because nothing after it could execute meaningfully.
func (r *Runner) Run(ctx context.Context, rc *Context) *Result {
	total := len(r.Steps)
	ledger := NewLedger()

	for i, step := range r.Steps {
		log := r.Log.Step(i+1, total)
		log.Info("%s: starting", step.Name)
		start := time.Now()

		if err := step.Run(ctx, rc, log); err != nil {
			ledger.RecordFailure(step.Name, err)
			if step.Foundational {
				log.Error("%s failed after %s: %v", step.Name, since(start), err)
				log.Error("foundational step failed, aborting run")
				return &Result{Status: ledger.Status(true), Ledger: ledger, Aborted: true}
			}
			log.Error("%s failed after %s: %v, continuing with remaining steps", step.Name, since(start), err)
			continue
		}

		ledger.RecordSuccess(step.Name)
		log.Success("%s completed in %s", step.Name, since(start))
	}

	return &Result{Status: ledger.Status(false), Ledger: ledger}
}

func since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
