package provision

import (
	"context"
	"fmt"
	"os"
)

// SystemState is the host-level snapshot taken after the run, independent
// of what the ledger claims happened.
type SystemState struct {
	RuntimeInstalled  bool
	RuntimeRunning    bool
	InstallDirPresent bool
	RunningServices   int
	TotalServices     int
}

// StateInspector is the slice of the container client the report gatherer
// needs.
type StateInspector interface {
	Info(ctx context.Context) error
	ContainerState(ctx context.Context, container string) (string, error)
}

// GatherSystemState probes the host for the closing report. Probe failures
// degrade to "no" answers rather than errors: the report must always be
// producible, especially after a failed run.
func GatherSystemState(ctx context.Context, lookPath func(string) (string, error), docker StateInspector, installDir string, containers []string) SystemState {
	state := SystemState{TotalServices: len(containers)}

	if _, err := lookPath("docker"); err == nil {
		state.RuntimeInstalled = true
		state.RuntimeRunning = docker.Info(ctx) == nil
	}

	if info, err := os.Stat(installDir); err == nil && info.IsDir() {
		state.InstallDirPresent = true
	}

	if state.RuntimeRunning {
		for _, name := range containers {
			if st, err := docker.ContainerState(ctx, name); err == nil && st == "running" {
				state.RunningServices++
			}
		}
	}
	return state
}

// Report is the machine-readable closing block appended to the run log and
// echoed to the boot log.
type Report struct {
	Status RunStatus
	Ledger *Ledger
	System SystemState
	Total  int
}

const reportRule = "=============================================================="

// Lines renders the report, one log line per element.
func (r *Report) Lines() []string {
	lines := []string{
		reportRule,
		"PROVISIONING RUN COMPLETE",
		fmt.Sprintf("Final status: %s", r.Status),
		fmt.Sprintf("Completed steps (%d/%d):", len(r.Ledger.Completed), r.Total),
	}
	for _, step := range r.Ledger.Completed {
		lines = append(lines, "  - "+step)
	}

	if len(r.Ledger.Failed) == 0 {
		lines = append(lines, "Failed steps: none")
	} else {
		lines = append(lines, fmt.Sprintf("Failed steps (%d):", len(r.Ledger.Failed)))
		for _, failure := range r.Ledger.Failed {
			lines = append(lines, fmt.Sprintf("  - %s: %s", failure.Step, failure.Reason))
		}
	}

	lines = append(lines,
		fmt.Sprintf("Container runtime installed: %s", yesNo(r.System.RuntimeInstalled)),
		fmt.Sprintf("Container runtime running: %s", yesNo(r.System.RuntimeRunning)),
		fmt.Sprintf("Install directory present: %s", yesNo(r.System.InstallDirPresent)),
		fmt.Sprintf("Running managed services: %d/%d", r.System.RunningServices, r.System.TotalServices),
		reportRule,
	)
	return lines
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
