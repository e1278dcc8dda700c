package action

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/pmnps/dag"
	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/scheduler"
	"github.com/kbukum/pmnps/workspace"
)

// PlanOptions selects what a build would run.
type PlanOptions struct {
	// Name builds one platform and its dependencies. Empty builds all.
	Name string
	Mode string
}

// Plan is the batches a build runs, packages first.
type Plan struct {
	Target     string           `json:"target,omitempty" yaml:"target,omitempty"`
	Mode       string           `json:"mode,omitempty" yaml:"mode,omitempty"`
	Packages   [][]string       `json:"packages" yaml:"packages"`
	Platforms  [][]string       `json:"platforms" yaml:"platforms"`
	Unresolved []dag.Unresolved `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Warnings   []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	packages  [][]scheduler.Package
	platforms [][]scheduler.Platform
}

// Plan returns the batches Build would run for opts without running them.
func (e *Env) Plan(ctx context.Context, opts PlanOptions) (_ *Plan, err error) {
	ctx, end := e.begin(ctx, "plan", false)
	defer func() { end(err) }()
	return e.plan(ctx, opts)
}

func (e *Env) plan(ctx context.Context, opts PlanOptions) (*Plan, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	snap, err := e.Workspace.Load(ctx)
	if err != nil {
		return nil, err
	}
	p := &Plan{Target: opts.Name, Mode: opts.Mode}
	for _, w := range snap.Warnings {
		p.Warnings = append(p.Warnings, w.Error())
	}

	eligible := workspace.BuildPlatforms(snap.Platforms, opts.Mode)
	if len(eligible) == 0 {
		return nil, errors.NoEligible("Please create a platform first.")
	}
	if opts.Name != "" {
		if _, ok := workspace.Find(eligible, opts.Name); !ok {
			return nil, errors.UnknownChoice("platform", opts.Name, workspace.Names(eligible))
		}
	}

	g := dag.Build(scheduler.Platforms(eligible))
	p.Unresolved = g.Unresolved()
	log := e.log().WithContext(ctx)
	for _, u := range p.Unresolved {
		log.Warn("unresolved platform dependency", logger.Fields(
			logger.FieldMember, u.Node, "dependency", u.Dependency,
		))
	}

	if opts.Name != "" {
		p.platforms, err = g.TargetBatches(opts.Name)
	} else {
		p.platforms, err = g.Batches()
	}
	if err != nil {
		return nil, graphError(err)
	}

	var used []string
	for _, batch := range p.platforms {
		for _, pf := range batch {
			used = append(used, pf.Manifest().PackageDependencies()...)
		}
	}
	pkgs, err := scheduler.PlanPackages(snap.Packages, used)
	if err != nil {
		return nil, graphError(err)
	}
	p.packages = scheduler.FilterBatches(pkgs, func(pkg scheduler.Package) bool {
		return pkg.Manifest().HasScript("build")
	})

	p.Packages = batchNames(p.packages)
	p.Platforms = batchNames(p.platforms)
	return p, nil
}

func graphError(err error) error {
	var cycle *dag.CycleError
	if stderrors.As(err, &cycle) {
		nodes := cycle.Path
		if len(nodes) == 0 {
			nodes = cycle.Nodes
		}
		return errors.DependencyCycle(nodes, err)
	}
	var unknown *dag.UnknownNodeError
	if stderrors.As(err, &unknown) {
		return errors.NotFound("platform", unknown.Name).WithCause(err)
	}
	return errors.Wrap(err)
}

func batchNames[V dag.Vertex](batches [][]V) [][]string {
	out := make([][]string, 0, len(batches))
	for _, b := range batches {
		names := make([]string, len(b))
		for i, v := range b {
			names[i] = v.Name()
		}
		out = append(out, names)
	}
	return out
}
