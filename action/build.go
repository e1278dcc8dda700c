package action

import (
	"context"

	"github.com/kbukum/pmnps/scheduler"
)

// BuildOptions are the build command flags.
type BuildOptions struct {
	Name    string
	Mode    string
	Param   string
	Install bool
}

// Build installs when asked, builds the packages the selected platforms
// use, then builds the platforms batch by batch.
func (e *Env) Build(ctx context.Context, opts BuildOptions) (err error) {
	ctx, end := e.begin(ctx, "build", true)
	defer func() { end(err) }()

	p, err := e.plan(ctx, PlanOptions{Name: opts.Name, Mode: opts.Mode})
	if err != nil {
		return err
	}

	if opts.Name != "" {
		e.Printer.Info("start building platform: %s", opts.Name)
	} else {
		e.Printer.Info("start building platforms")
	}

	if opts.Install {
		if err := e.install(ctx); err != nil {
			return err
		}
	}

	if len(p.packages) > 0 {
		task := scheduler.BuildTask("", "")
		task.Hooks = false
		if _, err := scheduler.Run(ctx, e.Executor, p.packages, task); err != nil {
			return err
		}
	}

	if _, err := scheduler.Run(ctx, e.Executor, p.platforms, scheduler.BuildTask(opts.Mode, opts.Param)); err != nil {
		return err
	}
	e.Printer.Success("build complete")
	return nil
}
