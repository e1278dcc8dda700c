package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/pmnps/dag"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/output"
	"github.com/kbukum/pmnps/process"
)

// Execution is the outcome of one member's command sequence.
type Execution struct {
	Member   string
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error

	warned bool
}

// HasWarnings reports whether any command of the sequence wrote to stderr.
func (e *Execution) HasWarnings() bool { return e.warned }

// Executor runs package manager commands in member directories.
type Executor struct {
	Runner         process.Runner
	PackageManager string
	Printer        *output.Printer
	Logger         *logger.Logger
	// MaxParallel caps concurrent members per batch (0 = unlimited).
	MaxParallel int
}

// NewExecutor returns an executor using the real process adapter.
func NewExecutor(pm string, cfg process.Config, printer *output.Printer) *Executor {
	return &Executor{
		Runner:         process.NewAdapter(cfg),
		PackageManager: pm,
		Printer:        printer,
		Logger:         logger.Get("scheduler"),
	}
}

// Execute runs task for m: the before hook, the main command, then the after
// hook, stopping at the first failure. An exclusive member streams its
// output live; otherwise output is buffered and printed as one section once
// the sequence has finished.
func (e *Executor) Execute(ctx context.Context, m Member, exclusive bool, task Task) (*Execution, error) {
	man := m.Manifest()
	name, alias := m.Name(), man.Alias()
	log := e.log().WithContext(ctx).WithFields(logger.Fields(logger.FieldMember, name))

	steps := make([]step, 0, 3)
	var before, after string
	if task.Hooks {
		before, after = man.Hooks()
	}
	if before != "" {
		steps = append(steps, step{cmd: hook(name, man.Dir, before, ResolveParam(task.Param, name, alias, ScopeBefore))})
	}
	steps = append(steps, step{
		cmd: process.Command{
			Label:  name,
			Binary: e.PackageManager,
			Args:   task.Args(man, ResolveParam(task.Param, name, alias, ScopeMain)),
			Dir:    man.Dir,
		},
		main: true,
	})
	if after != "" {
		steps = append(steps, step{cmd: hook(name, man.Dir, after, ResolveParam(task.Param, name, alias, ScopeAfter))})
	}

	var stdout, stderr strings.Builder
	exec := &Execution{Member: name}
	start := time.Now()

	for _, s := range steps {
		if exclusive && e.Printer != nil {
			s.cmd.Stdout, s.cmd.Stderr = e.Printer.Out(), e.Printer.Err()
		}
		log.Debug("running command", logger.Fields(logger.FieldCommand, s.cmd.String()))

		res, err := e.run(ctx, s.cmd, task, s.main)
		if res != nil {
			stdout.Write(res.Stdout)
			stderr.Write(res.Stderr)
			exec.warned = exec.warned || res.HasStderr()
		}
		if err != nil {
			exec.Err = err
			break
		}
	}

	exec.Stdout, exec.Stderr = stdout.String(), stderr.String()
	exec.Duration = time.Since(start)

	if exec.HasWarnings() {
		log.Debug("command wrote to stderr")
	}
	if !exclusive && e.Printer != nil {
		header := name
		if task.Header != "" {
			header = task.Header + " " + name
		}
		e.Printer.Section(header, exec.Stdout, exec.Stderr)
	}
	return exec, exec.Err
}

type step struct {
	cmd  process.Command
	main bool
}

func (e *Executor) run(ctx context.Context, cmd process.Command, task Task, main bool) (*process.Result, error) {
	if main && task.Retry != nil {
		return process.RunWithRetry(ctx, e.Runner, cmd, *task.Retry)
	}
	return e.Runner.Run(ctx, cmd)
}

// hook builds `sh -c "<script> <param>"`.
func hook(name, dir, script, param string) process.Command {
	if param != "" {
		script += " " + param
	}
	return process.Shell(name, dir, script)
}

func (e *Executor) log() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Get("scheduler")
}

// NodeFunc adapts e to the dag engine for task.
func NodeFunc[V Member](e *Executor, task Task) dag.NodeFunc[V] {
	return func(ctx context.Context, node V, exclusive bool) error {
		_, err := e.Execute(ctx, node, exclusive, task)
		return err
	}
}

// Run executes task over batches: batches in order, members of a batch
// concurrently.
func Run[V Member](ctx context.Context, e *Executor, batches [][]V, task Task) (*dag.Result, error) {
	engine := &dag.Engine[V]{
		MaxParallel: e.MaxParallel,
		Action:      task.Name,
		Logger:      e.log(),
	}
	return engine.Run(ctx, batches, NodeFunc[V](e, task))
}
