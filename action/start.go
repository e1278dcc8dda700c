package action

import (
	"context"
	"strings"

	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/scheduler"
	"github.com/kbukum/pmnps/workspace"
)

// StartOptions are the start command flags.
type StartOptions struct {
	Name string
}

// Start runs the start script of one platform with live output until it
// exits or ctx is canceled. Without a name the only startable platform is
// used.
func (e *Env) Start(ctx context.Context, opts StartOptions) (err error) {
	ctx, end := e.begin(ctx, "start", false)
	defer func() { end(err) }()

	plats, _, err := e.Workspace.Platforms(ctx)
	if err != nil {
		return err
	}
	startable := workspace.StartPlatforms(plats)
	if len(startable) == 0 {
		return errors.NoEligible("Please create a platform first.")
	}

	var target *workspace.Manifest
	switch {
	case opts.Name != "":
		m, ok := workspace.Find(startable, opts.Name)
		if !ok {
			return errors.UnknownChoice("platform", opts.Name, workspace.Names(startable))
		}
		target = m
	case len(startable) == 1:
		target = startable[0]
	default:
		return errors.InvalidInput("name",
			"choose a platform with --name: "+strings.Join(workspace.Names(startable), ", "))
	}

	e.Printer.Info("start developing platform: %s", target.Name)
	_, err = e.Executor.Execute(ctx, scheduler.NewPlatform(target), true, scheduler.StartTask())
	return err
}
