package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryRecoversFromOverload(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	out, err := WithRetry(context.Background(), policy, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &GenerationError{StatusCode: 503, Message: "model overloaded"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Fatalf("expected ok, got %q", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), policy, func() (string, error) {
		calls++
		return "", &GenerationError{StatusCode: 503, Message: "model overloaded"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !IsTransientOverload(err) {
		t.Fatalf("expected last overload error, got %v", err)
	}
}

func TestWithRetryDoesNotRetryNonTransient(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), policy, func() (string, error) {
		calls++
		return "", &GenerationError{StatusCode: 400, Message: "bad request"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestWithRetryDoesNotRetryQuotaExceeded(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), policy, func() (string, error) {
		calls++
		return "", &GenerationError{StatusCode: 429, Message: "quota exceeded"}
	})
	if !IsQuotaExceeded(err) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := WithRetry(ctx, policy, func() (string, error) {
			calls++
			return "", &GenerationError{StatusCode: 503, Message: "model overloaded"}
		})
		done <- err
	}()

	// Cancel while the retry loop is waiting out the delay
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not stop on cancellation")
	}

	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestWithRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	out, err := WithRetry(context.Background(), RetryPolicy{}, func() (string, error) {
		calls++
		return "once", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "once" || calls != 1 {
		t.Fatalf("expected single call, got %d calls, out %q", calls, out)
	}
}
