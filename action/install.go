package action

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/resilience"
	"github.com/kbukum/pmnps/scheduler"
	"github.com/kbukum/pmnps/workspace"
)

// Install installs at the workspace root, then in every own-root platform
// concurrently. Failed installs are retried per install.retries.
func (e *Env) Install(ctx context.Context) (err error) {
	ctx, end := e.begin(ctx, "install", false)
	defer func() { end(err) }()

	if err := e.install(ctx); err != nil {
		return err
	}
	e.Printer.Success("install complete")
	return nil
}

func (e *Env) install(ctx context.Context) error {
	root, err := e.Workspace.RootManifest()
	if err != nil {
		return err
	}
	plats, _, err := e.Workspace.Platforms(ctx)
	if err != nil {
		return err
	}

	log := e.log().WithContext(ctx)
	retry := resilience.InstallRetryConfig(e.Config.Install.Retries)
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("install failed, retrying", logger.MergeWithError(logger.Fields(
			"attempt", attempt, "backoff", backoff.String(),
		), err))
	}
	task := scheduler.InstallTask(retry)

	e.Printer.Info("installing dependencies")
	if _, err := scheduler.Run(ctx, e.Executor, [][]scheduler.Platform{{scheduler.NewPlatform(root)}}, task); err != nil {
		return err
	}

	own := workspace.OwnRootPlatforms(plats)
	if len(own) == 0 {
		return nil
	}
	e.Printer.Info("installing own-root platforms: %s", strings.Join(workspace.Names(own), ", "))
	_, err = scheduler.Run(ctx, e.Executor, [][]scheduler.Platform{scheduler.Platforms(own)}, task)
	return err
}
