package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdhq/stackd/internal/logging"
)

func syntheticStep(name string, foundational bool, err error) Step {
	return Step{
		Name:         name,
		Foundational: foundational,
		Run: func(context.Context, *Context, logging.Logger) error {
			return err
		},
	}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	t.Parallel()

	steps := []Step{
		syntheticStep("first", true, nil),
		syntheticStep("second", false, nil),
		syntheticStep("third", false, nil),
	}
	runner := NewRunner(steps, logging.NewRecorder())

	result := runner.Run(context.Background(), &Context{State: &State{}})

	assert.Equal(t, StatusSuccess, result.Status)
	assert.False(t, result.Aborted)
	assert.Equal(t, []string{"first", "second", "third"}, result.Ledger.Completed)
	assert.Empty(t, result.Ledger.Failed)
}

func TestRun_NonFoundationalFailureContinues(t *testing.T) {
	t.Parallel()

	steps := []Step{
		syntheticStep("first", true, nil),
		syntheticStep("second", false, errors.New("disk full")),
		syntheticStep("third", false, nil),
	}
	runner := NewRunner(steps, logging.NewRecorder())

	result := runner.Run(context.Background(), &Context{State: &State{}})

	assert.Equal(t, StatusPartialSuccess, result.Status)
	assert.False(t, result.Aborted)
	assert.Equal(t, []string{"first", "third"}, result.Ledger.Completed)
	require.Len(t, result.Ledger.Failed, 1)
	assert.Equal(t, "second", result.Ledger.Failed[0].Step)
	assert.Equal(t, "disk full", result.Ledger.Failed[0].Reason)
}

func TestRun_FoundationalFailureAborts(t *testing.T) {
	t.Parallel()

	third := false
	steps := []Step{
		syntheticStep("first", true, nil),
		syntheticStep("second", true, errors.New("unsupported platform")),
		{Name: "third", Run: func(context.Context, *Context, logging.Logger) error {
			third = true
			return nil
		}},
	}
	runner := NewRunner(steps, logging.NewRecorder())

	result := runner.Run(context.Background(), &Context{State: &State{}})

	assert.Equal(t, StatusFailed, result.Status)
	assert.True(t, result.Aborted)
	assert.False(t, third, "steps after a foundational failure must not run")
	assert.Equal(t, []string{"first"}, result.Ledger.Completed)
	require.Len(t, result.Ledger.Failed, 1)
	assert.Equal(t, "second", result.Ledger.Failed[0].Step)
	assert.Equal(t, 2, result.Ledger.Attempted())
}

// Every attempted step must land in exactly one ledger list, in order.
func TestRun_LedgerPartitionsAttemptedSteps(t *testing.T) {
	t.Parallel()

	steps := []Step{
		syntheticStep("a", false, nil),
		syntheticStep("b", false, errors.New("boom")),
		syntheticStep("c", false, nil),
		syntheticStep("d", false, errors.New("bang")),
	}
	runner := NewRunner(steps, logging.NewRecorder())

	result := runner.Run(context.Background(), &Context{State: &State{}})

	assert.Equal(t, len(steps), result.Ledger.Attempted())
	seen := map[string]int{}
	for _, name := range result.Ledger.Completed {
		seen[name]++
	}
	for _, failure := range result.Ledger.Failed {
		seen[failure.Step]++
	}
	for _, step := range steps {
		assert.Equal(t, 1, seen[step.Name], "step %s must appear exactly once", step.Name)
	}
}

func TestRun_StepLogsCarryPosition(t *testing.T) {
	t.Parallel()

	rec := logging.NewRecorder()
	runner := NewRunner([]Step{
		syntheticStep("only", false, nil),
	}, rec)

	runner.Run(context.Background(), &Context{State: &State{}})

	require.NotEmpty(t, *rec.Entries)
	for _, entry := range *rec.Entries {
		assert.Equal(t, "STEP 1/1", entry.Tag)
	}
}

func TestLedgerStatus(t *testing.T) {
	t.Parallel()

	clean := NewLedger()
	clean.RecordSuccess("a")
	assert.Equal(t, StatusSuccess, clean.Status(false))

	degraded := NewLedger()
	degraded.RecordSuccess("a")
	degraded.RecordFailure("b", errors.New("boom"))
	assert.Equal(t, StatusPartialSuccess, degraded.Status(false))
	assert.Equal(t, StatusFailed, degraded.Status(true))
}

func TestRunStatusExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, StatusSuccess.ExitCode())
	assert.Equal(t, 0, StatusPartialSuccess.ExitCode())
	assert.Equal(t, 1, StatusFailed.ExitCode())
}
