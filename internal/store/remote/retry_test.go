package remote

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsWithinBound(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := policy.run(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("match row not committed yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetrySurfacesTerminalError(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	terminal := errors.New("still missing")
	err := policy.run(context.Background(), func() error {
		calls++
		return terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{Attempts: 10, Delay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.run(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if calls > 2 {
		t.Fatalf("expected retries to stop after cancel, got %d attempts", calls)
	}
}

func TestRetryDefaultsApplied(t *testing.T) {
	p := RetryPolicy{}.normalized()
	if p.Attempts != defaultLinkAttempts || p.Delay != defaultLinkDelay {
		t.Fatalf("unexpected defaults %+v", p)
	}
}
