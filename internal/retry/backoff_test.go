package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errRefused = errors.New("connection refused")

func fast(attempts int) *Backoff {
	return &Backoff{Initial: time.Millisecond, Max: 5 * time.Millisecond, Attempts: attempts}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := fast(10).Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return errRefused
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_Stop(t *testing.T) {
	calls := 0
	err := fast(10).Do(context.Background(), func(int) error {
		calls++
		return Stop(fmt.Errorf("permission denied"))
	})
	if err == nil || err.Error() != "permission denied" {
		t.Errorf("err = %v, want the unwrapped stop error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	err := fast(3).Do(context.Background(), func(int) error {
		calls++
		return errRefused
	})
	if !errors.Is(err, errRefused) {
		t.Fatalf("err = %v, want wrapped errRefused", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_Retryable(t *testing.T) {
	b := fast(10)
	b.Retryable = func(err error) bool { return errors.Is(err, errRefused) }

	fatal := errors.New("bad socket path")
	calls := 0
	err := b.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt == 1 {
			return errRefused
		}
		return fatal
	})
	if err != fatal {
		t.Errorf("err = %v, want %v unwrapped", err, fatal)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_OnRetry(t *testing.T) {
	b := fast(3)
	var seen []int
	b.OnRetry = func(attempt int, wait time.Duration, err error) {
		if wait <= 0 || err == nil {
			t.Errorf("OnRetry(%d, %v, %v)", attempt, wait, err)
		}
		seen = append(seen, attempt)
	}
	b.Do(context.Background(), func(int) error { return errRefused }) //nolint:errcheck

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	b := &Backoff{Initial: 5 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := b.Do(ctx, func(int) error { return errRefused })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation did not interrupt the wait")
	}
}

func TestStop(t *testing.T) {
	if Stop(nil) != nil {
		t.Error("Stop(nil) should be nil")
	}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"stop", Stop(errRefused), true},
		{"wrapped stop", fmt.Errorf("dial: %w", Stop(errRefused)), true},
		{"plain", errRefused, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStop(tt.err); got != tt.want {
				t.Errorf("IsStop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJitter_Range(t *testing.T) {
	d := 100 * time.Millisecond
	lower := time.Duration(float64(d) * 0.74)
	upper := time.Duration(float64(d) * 1.26)
	for i := 0; i < 100; i++ {
		if j := jitter(d); j < lower || j > upper {
			t.Errorf("jitter %v outside [%v, %v]", j, lower, upper)
		}
	}
}

func TestConnect(t *testing.T) {
	b := Connect(5)
	if b.Attempts != 5 || b.Initial != 100*time.Millisecond || !b.Jitter {
		t.Errorf("Connect(5) = %+v", b)
	}
}
