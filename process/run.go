package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/pmnps/errors"
)

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent to the process group first,
// then SIGKILL after GracePeriod.
//
// A non-zero exit or an expired deadline returns PROCESS_FAILED, a canceled
// context CANCELED and a missing executable NOT_FOUND. The Result is returned whenever the
// process started.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.InvalidInput("binary", "process binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running member scripts is the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = tee(&stdout, cmd.Stdout)
	c.Stderr = tee(&stderr, cmd.Stderr)

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: duration,
	}

	if err == nil {
		return result, nil
	}
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, errors.ProcessFailed(label(cmd), cmd.String(),
			fmt.Errorf("timed out after %s: %w", duration.Round(time.Millisecond), ctx.Err()))
	}
	if ctx.Err() != nil {
		return result, errors.Canceled(ctx.Err())
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		return nil, errors.NotFound("executable", cmd.Binary).WithCause(err)
	}
	if c.ProcessState == nil {
		return nil, errors.ProcessFailed(label(cmd), cmd.String(), err)
	}
	return result, errors.ProcessFailed(label(cmd), cmd.String(),
		fmt.Errorf("exit code %d: %w", result.ExitCode, err))
}

func label(cmd Command) string {
	if cmd.Label != "" {
		return cmd.Label
	}
	if cmd.Dir != "" {
		return cmd.Dir
	}
	return cmd.Binary
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
