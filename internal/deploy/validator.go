package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackdhq/stackd/internal/logging"
)

// Composer is the slice of the container-runtime client the validator needs.
type Composer interface {
	ComposeUp(ctx context.Context) error
	ComposeDown(ctx context.Context) error
	ContainerState(ctx context.Context, container string) (string, error)
	ContainerLogs(ctx context.Context, container string, tail int) (string, error)
}

const diagnosticLogLines = 50

// Validator drives the service group to convergence.
type Validator struct {
	Docker   Composer
	Services []Service
	Policy   Policy
	Clock    Clock
	Log      logging.Logger
}

// Run starts the service group and polls until every managed service
// reports a running process state simultaneously. Partial convergence never
// satisfies the check. After the single remediation cycle also fails, the
// returned error lists each offending service with its last known state.
func (v *Validator) Run(ctx context.Context) error {
	v.Log.Info("starting service group (%d services)", len(v.Services))
	if err := v.Docker.ComposeUp(ctx); err != nil {
		return err
	}

	states, converged, err := v.poll(ctx, v.Policy.MaxAttempts)
	if err != nil {
		return err
	}
	if !converged {
		v.captureDiagnostics(ctx, states)
		v.Log.Warning("service group did not converge within %d attempts, performing one remediation cycle",
			v.Policy.MaxAttempts)

		if err := v.remediate(ctx); err != nil {
			return err
		}

		states, converged, err = v.poll(ctx, v.Policy.RemediationAttempts)
		if err != nil {
			return err
		}
		if !converged {
			return v.hardFailure(states)
		}
	}

	v.Log.Success("all %d managed services are running", len(v.Services))
	v.runProbes(ctx)
	return nil
}

// poll checks process state for every service up to attempts times with the
// policy delay in between. It returns the last observed state per service
// and whether full convergence was reached.
func (v *Validator) poll(ctx context.Context, attempts int) (map[string]string, bool, error) {
	states := make(map[string]string, len(v.Services))
	for _, svc := range v.Services {
		states[svc.Name] = string(StateUnknown)
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		running := 0
		for _, svc := range v.Services {
			state, err := v.Docker.ContainerState(ctx, svc.Container)
			if err != nil {
				state = string(StateUnknown)
			}
			states[svc.Name] = state
			if state == "running" {
				running++
			}
		}

		if running == len(v.Services) {
			return states, true, nil
		}
		v.Log.Info("convergence attempt %d/%d: %d/%d services running",
			attempt, attempts, running, len(v.Services))

		if attempt < attempts {
			if err := v.Clock.Sleep(ctx, v.Policy.Delay); err != nil {
				return states, false, fmt.Errorf("convergence polling interrupted: %w", err)
			}
		}
	}
	return states, false, nil
}

// remediate performs the single stop/pause/restart cycle.
func (v *Validator) remediate(ctx context.Context) error {
	if err := v.Docker.ComposeDown(ctx); err != nil {
		return fmt.Errorf("remediation stop failed: %w", err)
	}
	if err := v.Clock.Sleep(ctx, v.Policy.RemediationPause); err != nil {
		return fmt.Errorf("remediation interrupted: %w", err)
	}
	if err := v.Docker.ComposeUp(ctx); err != nil {
		return fmt.Errorf("remediation restart failed: %w", err)
	}
	return nil
}

func (v *Validator) captureDiagnostics(ctx context.Context, states map[string]string) {
	for _, svc := range v.Services {
		if states[svc.Name] == "running" {
			continue
		}
		logs, err := v.Docker.ContainerLogs(ctx, svc.Container, diagnosticLogLines)
		if err != nil {
			v.Log.Warning("%s is %s, no logs available: %v", svc.Name, states[svc.Name], err)
			continue
		}
		v.Log.Warning("%s is %s, recent logs:\n%s", svc.Name, states[svc.Name], strings.TrimSpace(logs))
	}
}

func (v *Validator) hardFailure(states map[string]string) error {
	var parts []string
	for _, svc := range v.Services {
		if states[svc.Name] != "running" {
			parts = append(parts, fmt.Sprintf("%s=%s", svc.Name, states[svc.Name]))
		}
	}
	return fmt.Errorf("service group failed to converge after remediation: %s", strings.Join(parts, ", "))
}

// runProbes executes the semantic readiness probes. The processes are
// confirmed running by now, so probe failures are startup latency, not
// defects: they log warnings and never fail the run.
func (v *Validator) runProbes(ctx context.Context) {
	for _, svc := range v.Services {
		if svc.Probe == nil {
			v.Log.Info("%s: process running (no semantic probe)", svc.Name)
			continue
		}
		if err := svc.Probe.Check(ctx); err != nil {
			v.Log.Warning("%s: process running but %s not ready yet: %v", svc.Name, svc.Probe.Describe(), err)
			continue
		}
		v.Log.Info("%s: %s healthy", svc.Name, svc.Probe.Describe())
	}
}
