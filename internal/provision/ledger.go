package provision

// Failure records a step that did not complete, with a single-line reason.
type Failure struct {
	Step   string
	Reason string
}

// Ledger accumulates per-step outcomes over a run. Every attempted step
// lands in exactly one of the two lists.
type Ledger struct {
	Completed []string
	Failed    []Failure
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) RecordSuccess(step string) {
	l.Completed = append(l.Completed, step)
}

func (l *Ledger) RecordFailure(step string, err error) {
	reason := "unknown failure"
	if err != nil {
		reason = err.Error()
	}
	l.Failed = append(l.Failed, Failure{Step: step, Reason: reason})
}

// Attempted is the number of steps that ran, regardless of outcome.
func (l *Ledger) Attempted() int {
	return len(l.Completed) + len(l.Failed)
}

// Status reduces the ledger to a final run status. aborted reports whether
// the run stopped early on a foundational failure.
func (l *Ledger) Status(aborted bool) RunStatus {
	switch {
	case aborted:
		return StatusFailed
	case len(l.Failed) > 0:
		return StatusPartialSuccess
	default:
		return StatusSuccess
	}
}
