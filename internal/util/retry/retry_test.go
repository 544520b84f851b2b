package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := Do(context.Background(), operation)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := Do(context.Background(), operation, WithDelay(10*time.Millisecond))

	if err != nil {
		t.Errorf("Expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("persistent error")
	}

	err := Do(context.Background(), operation,
		WithMaxAttempts(4),
		WithDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error after exhausted budget, got nil")
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got: %d", attempts)
	}
}

func TestDo_FixedDelayKeepsBudgetBounded(t *testing.T) {
	t.Parallel()
	attempts := 0
	start := time.Now()
	operation := func() error {
		attempts++
		return errors.New("still starting")
	}

	err := Do(context.Background(), operation,
		WithMaxAttempts(3),
		WithDelay(20*time.Millisecond),
		WithMultiplier(1.0))

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
	// Two fixed inter-attempt delays: total elapsed stays near 40ms,
	// nowhere near what backoff growth would produce.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Fixed-delay retry took too long: %v", elapsed)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, operation, WithDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error due to context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before context check, got: %d", attempts)
	}
}

func TestDo_FatalNotRetried(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return Fatal(errors.New("unsupported platform"))
	}

	err := Do(context.Background(), operation, WithDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt for fatal error, got: %d", attempts)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	if IsFatal(errors.New("plain")) {
		t.Error("plain error must not be fatal")
	}
	if !IsFatal(Fatal(errors.New("wrapped"))) {
		t.Error("Fatal() error must be fatal")
	}
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) must be nil")
	}
}

func TestFatalError_Unwrap(t *testing.T) {
	t.Parallel()
	base := errors.New("base")
	wrapped := Fatal(base)
	if !errors.Is(wrapped, base) {
		t.Error("Fatal must preserve the wrapped error chain")
	}
}
