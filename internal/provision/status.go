package provision

// RunStatus classifies a finished provisioning run.
type RunStatus string

const (
	// StatusRunning is the transient status while steps execute.
	StatusRunning RunStatus = "RUNNING"
	// StatusSuccess means every step completed.
	StatusSuccess RunStatus = "SUCCESS"
	// StatusPartialSuccess means at least one non-foundational step failed
	// but the run proceeded through the remaining steps.
	StatusPartialSuccess RunStatus = "PARTIAL_SUCCESS"
	// StatusFailed means a foundational step failed and the run aborted.
	StatusFailed RunStatus = "FAILED"
)

// ExitCode maps a final status to the process exit code. PARTIAL_SUCCESS
// exits zero: a degraded stack is still a provisioned stack, and the boot
// integration must not treat it as a boot failure.
func (s RunStatus) ExitCode() int {
	if s == StatusFailed {
		return 1
	}
	return 0
}
