package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/kbukum/pmnps/errors"
)

// fastConfig retries without noticeable delay.
func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2,
	}
}

// installFailure is what a failed `npm install` looks like to the retry loop.
func installFailure(member string) error {
	return apperrors.ProcessFailed(member, "npm install", errors.New("exit status 1"))
}

func TestRetry_Attempts(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"first attempt succeeds", 3, 0, 1, false},
		{"succeeds on last attempt", 3, 2, 3, false},
		{"gives up after max attempts", 3, 5, 3, true},
		{"zero attempts runs once", 0, 5, 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			out, err := Retry(context.Background(), fastConfig(tc.attempts), func() (string, error) {
				calls++
				if calls <= tc.failFirst {
					return "", installFailure("web")
				}
				return "installed", nil
			})
			if calls != tc.wantCalls {
				t.Errorf("expected %d calls, got %d", tc.wantCalls, calls)
			}
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != "installed" {
				t.Errorf("expected result from the successful attempt, got %q", out)
			}
		})
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	last := installFailure("api")
	_, err := Retry(context.Background(), fastConfig(2), func() (int, error) {
		return 0, last
	})
	if !errors.Is(err, last) {
		t.Errorf("expected the last attempt's error, got %v", err)
	}
}

func TestRetry_StopsWhenContextEnds(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: 100 * time.Millisecond, BackoffFactor: 2}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		calls++
		return struct{}{}, installFailure("web")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls >= 10 {
		t.Errorf("expected the deadline to cut retries short, got %d calls", calls)
	}
}

func TestRetry_OnlyRetriesWhatRetryIfAccepts(t *testing.T) {
	cfg := fastConfig(3)
	cfg.RetryIf = RetryIfProcessFailed

	missing := errors.New("exec: \"npm\": executable file not found in $PATH")
	calls := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		return missing
	})
	if calls != 1 {
		t.Errorf("expected a missing binary to fail at once, got %d calls", calls)
	}
	if !errors.Is(err, missing) {
		t.Errorf("expected the original error, got %v", err)
	}
}

func TestRetry_OnRetryReportsEachRetry(t *testing.T) {
	cfg := fastConfig(3)
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = RetryFunc(context.Background(), cfg, func() error { return installFailure("web") })

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected OnRetry for attempts [1 2], got %v", attempts)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		if got := calculateBackoff(i+1, cfg); got != w {
			t.Errorf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
}

func TestInstallRetryConfig(t *testing.T) {
	cfg := InstallRetryConfig(2)
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	cfg.InitialBackoff = time.Millisecond

	calls := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return installFailure("root")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryIfProcessFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"process failed", installFailure("web"), true},
		{"wrapped process failed", fmt.Errorf("install: %w", apperrors.ProcessFailed("web", "npm", nil)), true},
		{"plain error", errors.New("exec: npm not found"), false},
		{"canceled", context.Canceled, false},
		{"app canceled", apperrors.Canceled(context.Canceled), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RetryIfProcessFailed(tc.err); got != tc.want {
				t.Errorf("RetryIfProcessFailed = %v, want %v", got, tc.want)
			}
		})
	}
}
