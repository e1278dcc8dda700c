package action

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/pmnps/config"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/observability"
	"github.com/kbukum/pmnps/output"
	"github.com/kbukum/pmnps/process"
	"github.com/kbukum/pmnps/scheduler"
	"github.com/kbukum/pmnps/workspace"
)

// Env carries everything an action needs.
type Env struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Executor  *scheduler.Executor
	Registry  Registry
	Printer   *output.Printer
	Logger    *logger.Logger
	// NewRunID defaults to a random UUID.
	NewRunID func() string
}

// NewEnv wires the real process runner for the workspace at root.
func NewEnv(root string, cfg *config.Config, printer *output.Printer) *Env {
	exec := scheduler.NewExecutor(cfg.PackageManager, process.Config{
		GracePeriod: cfg.Process.GracePeriod,
	}, printer)
	exec.MaxParallel = cfg.Concurrency

	return &Env{
		Config:    cfg,
		Workspace: workspace.Open(root),
		Executor:  exec,
		Registry:  NewRegistry(exec.Runner, cfg.PackageManager, root),
		Printer:   printer,
		Logger:    logger.Get("action"),
	}
}

// begin starts the run of action. bounded applies process.timeout. The
// returned function ends the run and must be called with the action's error.
func (e *Env) begin(ctx context.Context, action string, bounded bool) (context.Context, func(error)) {
	id := e.runID()
	ctx = logger.ContextWithRunID(ctx, id)

	cancel := context.CancelFunc(func() {})
	if bounded && e.Config.Process.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.Config.Process.Timeout)
	}

	ctx, run := observability.StartRun(ctx, action, id)
	log := e.log().WithContext(ctx)
	log.Debug("action started", logger.Fields(logger.FieldAction, action))

	return ctx, func(err error) {
		run.End(err)
		fields := logger.MergeWithDuration(logger.Fields(logger.FieldAction, action), run.Duration())
		if err != nil {
			log.Debug("action failed", logger.MergeWithError(fields, err))
		} else {
			log.Debug("action finished", fields)
		}
		cancel()
	}
}

func (e *Env) runID() string {
	if e.NewRunID != nil {
		return e.NewRunID()
	}
	return uuid.NewString()
}

func (e *Env) log() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Get("action")
}
