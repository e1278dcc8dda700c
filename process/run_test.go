package process_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/process"
	"github.com/kbukum/pmnps/resilience"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := string(result.Stdout); out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunStreamsToWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo out; echo err >&2"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "out\n" || stderr.String() != "err\n" {
		t.Errorf("expected streamed output, got %q / %q", stdout.String(), stderr.String())
	}
	if string(result.Stdout) != "out\n" {
		t.Errorf("expected result to keep a copy, got %q", result.Stdout)
	}
	if !result.HasStderr() {
		t.Error("expected HasStderr")
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Label:  "web",
		Binary: "sh",
		Args:   []string{"-c", "exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeProcessFailed {
		t.Fatalf("expected PROCESS_FAILED, got %v", err)
	}
	if appErr.Details["member"] != "web" || appErr.Details["command"] != "exit 42" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestRunStderrIsNotFailure(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo oops >&2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stderr := strings.TrimSpace(string(result.Stderr)); stderr != "oops" {
		t.Fatalf("expected 'oops' on stderr, got %q", stderr)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	result, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeCanceled {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunDeadlineIsProcessFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := process.Run(ctx, process.Command{Binary: "sleep", Args: []string{"10"}})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeProcessFailed {
		t.Fatalf("expected PROCESS_FAILED, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected deadline in the error chain")
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Binary: "pmnps-no-such-binary"})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRunEnv(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $MY_TEST_VAR"},
		Env:    []string{"MY_TEST_VAR=hello123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != "hello123" {
		t.Fatalf("expected 'hello123', got %q", out)
	}
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	cmd := process.Shell("web", dir, "pwd")
	if cmd.String() != "pwd" {
		t.Errorf("expected command line 'pwd', got %q", cmd.String())
	}
	result, err := process.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(result.Stdout)), dir[strings.LastIndex(dir, "/"):]) {
		t.Errorf("expected to run in %s, got %q", dir, result.Stdout)
	}
}

func TestCommandString(t *testing.T) {
	cmd := process.Command{Binary: "npm", Args: []string{"run", "build", "--", "x"}}
	if cmd.String() != "npm run build -- x" {
		t.Errorf("unexpected %q", cmd.String())
	}
}

func TestAdapterAppliesDefaults(t *testing.T) {
	a := process.NewAdapter(process.Config{Env: []string{"PMNPS_ADAPTER_VAR=set"}})
	result, err := a.Run(context.Background(), process.Shell("x", "", "echo $PMNPS_ADAPTER_VAR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(result.Stdout)) != "set" {
		t.Errorf("expected adapter env, got %q", result.Stdout)
	}
}

func TestAdapterTimeout(t *testing.T) {
	a := process.NewAdapter(process.Config{Timeout: 50 * time.Millisecond})
	_, err := a.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"5"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRunWithRetry(t *testing.T) {
	marker := t.TempDir() + "/attempts"
	// Fails until the marker file has two lines.
	script := "echo x >> " + marker + "; test $(wc -l < " + marker + ") -ge 2"

	cfg := resilience.InstallRetryConfig(2)
	cfg.InitialBackoff = time.Millisecond

	result, err := process.RunWithRetry(context.Background(), process.NewAdapter(process.Config{}),
		process.Shell("root", "", script), cfg)
	if err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunWithRetry_GivesUp(t *testing.T) {
	cfg := resilience.InstallRetryConfig(1)
	cfg.InitialBackoff = time.Millisecond

	result, err := process.RunWithRetry(context.Background(), process.NewAdapter(process.Config{}),
		process.Shell("root", "", "exit 3"), cfg)
	if err == nil {
		t.Fatal("expected failure")
	}
	if result == nil || result.ExitCode != 3 {
		t.Errorf("expected last result with exit code 3, got %+v", result)
	}
}
