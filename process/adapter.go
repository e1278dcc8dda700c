package process

import (
	"context"
	"time"

	"github.com/kbukum/pmnps/resilience"
)

// Config holds defaults applied to every command an Adapter runs.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `json:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each command. Zero means no timeout.
	Timeout time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`
	// Env is appended to every command's environment.
	Env []string `json:"-" mapstructure:"-"`
}

// Runner executes commands. Adapter is the real implementation; tests
// substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Adapter runs subprocesses with shared defaults.
type Adapter struct {
	config Config
}

var _ Runner = (*Adapter)(nil)

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{config: cfg}
}

// Run executes a command, applying adapter-level defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && a.config.GracePeriod > 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if len(a.config.Env) > 0 {
		cmd.Env = append(append([]string(nil), a.config.Env...), cmd.Env...)
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// RunWithRetry runs cmd through r, retrying per cfg. Each attempt starts a
// fresh process; the last attempt's result is returned.
func RunWithRetry(ctx context.Context, r Runner, cmd Command, cfg resilience.RetryConfig) (*Result, error) {
	var last *Result
	_, err := resilience.Retry(ctx, cfg, func() (*Result, error) {
		res, err := r.Run(ctx, cmd)
		last = res
		return res, err
	})
	return last, err
}
