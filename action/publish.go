package action

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/scheduler"
	"github.com/kbukum/pmnps/workspace"
)

// PublishOptions are the publish command flags.
type PublishOptions struct {
	OTP string
}

// Publish publishes every member whose version is ahead of the registry:
// packages in dependency batches first, then platforms as one batch.
func (e *Env) Publish(ctx context.Context, opts PublishOptions) (err error) {
	ctx, end := e.begin(ctx, "publish", true)
	defer func() { end(err) }()

	if err := opts.validate(); err != nil {
		return err
	}
	if !e.Config.Publishable {
		e.Printer.Warn("Please use command `config` to enable publish action first.")
		return nil
	}

	snap, err := e.Workspace.Load(ctx)
	if err != nil {
		return err
	}

	candidates := make([]*workspace.Manifest, 0, len(snap.Packages)+len(snap.Platforms))
	candidates = append(candidates, snap.Packages...)
	candidates = append(candidates, snap.Platforms...)
	pending, err := e.pendingPublish(ctx, candidates)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		e.Printer.Info("No package or platform needs to be published.")
		return nil
	}

	pkgs, err := scheduler.PlanPackages(snap.Packages, workspace.Names(snap.Packages))
	if err != nil {
		return graphError(err)
	}
	pkgs = scheduler.FilterBatches(pkgs, func(p scheduler.Package) bool { return pending[p.Manifest()] })

	var plats []scheduler.Platform
	for _, m := range snap.Platforms {
		if pending[m] {
			plats = append(plats, scheduler.NewPlatform(m))
		}
	}

	task := scheduler.PublishTask(opts.OTP)
	if len(pkgs) > 0 {
		if _, err := scheduler.Run(ctx, e.Executor, pkgs, task); err != nil {
			return err
		}
	}
	if len(plats) > 0 {
		if _, err := scheduler.Run(ctx, e.Executor, [][]scheduler.Platform{plats}, task); err != nil {
			return err
		}
	}
	e.Printer.Success("publish complete")
	return nil
}

// pendingPublish asks the registry about every publishable candidate
// concurrently. A failed lookup skips the member.
func (e *Env) pendingPublish(ctx context.Context, candidates []*workspace.Manifest) (map[*workspace.Manifest]bool, error) {
	var (
		mu      sync.Mutex
		pending = make(map[*workspace.Manifest]bool)
	)
	log := e.log().WithContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, m := range candidates {
		if !m.Publishable() {
			continue
		}
		g.Go(func() error {
			remote, published, err := e.Registry.PublishedVersion(gctx, m.Name)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("version lookup failed, skipping", logger.MergeWithError(
					logger.Fields(logger.FieldMember, m.Name), err))
				return nil
			}
			if !NeedsPublish(m.Version, remote, published) {
				log.Debug("already published", logger.Fields(logger.FieldMember, m.Name, "version", remote))
				return nil
			}
			mu.Lock()
			pending[m] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pending, nil
}
