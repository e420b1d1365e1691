package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient error")
var errPermanent = errors.New("permanent error")

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func TestDo_ZeroConfigMakesSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Config{}, isTransient, nil, func() (int, error) {
		calls++
		return 0, errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesOnTransientError(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond}

	result, err := Do(context.Background(), cfg, isTransient, nil, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("expected result 42, got %d", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_FailsImmediatelyOnPermanentError(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	_, err := Do(context.Background(), cfg, isTransient, nil, func() (int, error) {
		calls++
		return 0, errPermanent
	})

	if !errors.Is(err, errPermanent) {
		t.Errorf("expected permanent error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retries for permanent error), got %d", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond}

	_, err := Do(context.Background(), cfg, isTransient, nil, func() (int, error) {
		calls++
		return 0, errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Errorf("expected transient error wrapped, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := Config{MaxRetries: 10, InitialBackoff: 100 * time.Millisecond}

	onRetry := func(attempt int, err error, backoff time.Duration) {
		cancel()
	}

	_, err := Do(ctx, cfg, isTransient, onRetry, func() (int, error) {
		calls++
		return 0, errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestConfig_Backoff(t *testing.T) {
	cfg := Config{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		BackoffFactor:  2.0,
	}.withDefaults()

	expected := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
		50 * time.Millisecond,
	}
	for i, want := range expected {
		if got := cfg.backoff(i + 1); got != want {
			t.Errorf("backoff(%d) = %v, want %v", i+1, got, want)
		}
	}
}

func TestDoVoid_RetriesAndSucceeds(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	err := DoVoid(context.Background(), cfg, isTransient, nil, func() error {
		calls++
		if calls < 2 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}
