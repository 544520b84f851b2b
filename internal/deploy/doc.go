// Package deploy starts the managed service group and validates that it
// converges to a healthy state.
//
// Convergence is polled under an explicit bounded retry policy: a fixed
// attempt budget with a fixed inter-attempt delay, never an unbounded loop.
// When the first budget is exhausted the validator captures diagnostics,
// performs exactly one remediation cycle (full stop, pause, full restart),
// and re-polls with a smaller budget before reporting a hard failure.
// Semantic per-service probes run only after convergence and can only
// produce warnings: application readiness may lag process start by design.
package deploy
