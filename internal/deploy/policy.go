package deploy

import "time"

// Policy bounds convergence polling. Total wait is expressed only as
// attempts multiplied by delay; there is no independent wall-clock deadline.
type Policy struct {
	// MaxAttempts is the initial polling budget.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// RemediationAttempts is the smaller budget applied after the single
	// remediation cycle.
	RemediationAttempts int

	// RemediationPause is the pause between stopping and restarting the
	// service group during remediation.
	RemediationPause time.Duration
}

// DefaultPolicy bounds startup waiting to a few minutes: 30 x 10s before
// remediation, then 12 x 10s after.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:         30,
		Delay:               10 * time.Second,
		RemediationAttempts: 12,
		RemediationPause:    15 * time.Second,
	}
}
