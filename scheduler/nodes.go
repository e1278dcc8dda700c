package scheduler

import (
	"github.com/kbukum/pmnps/dag"
	"github.com/kbukum/pmnps/workspace"
)

// Member is a workspace member the executor can run commands for.
type Member interface {
	dag.Vertex
	Manifest() *workspace.Manifest
}

// Platform schedules a deployable application.
type Platform struct {
	m *workspace.Manifest
}

var _ Member = Platform{}

// NewPlatform wraps m.
func NewPlatform(m *workspace.Manifest) Platform { return Platform{m: m} }

func (p Platform) Name() string                  { return p.m.Name }
func (p Platform) DependsOn() []string           { return p.m.PlatformDependencies() }
func (p Platform) Manifest() *workspace.Manifest { return p.m }

// Platforms wraps every manifest.
func Platforms(ms []*workspace.Manifest) []Platform {
	out := make([]Platform, len(ms))
	for i, m := range ms {
		out[i] = NewPlatform(m)
	}
	return out
}

// Package schedules a library package. Its dependencies are limited to
// names inside the workspace so registry packages never show up as
// unresolved.
type Package struct {
	m    *workspace.Manifest
	deps []string
}

var _ Member = Package{}

func (p Package) Name() string                  { return p.m.Name }
func (p Package) DependsOn() []string           { return p.deps }
func (p Package) Manifest() *workspace.Manifest { return p.m }

// Packages wraps every manifest, keeping only dependencies on other members
// of ms.
func Packages(ms []*workspace.Manifest) []Package {
	names := make(map[string]struct{}, len(ms))
	for _, m := range ms {
		names[m.Name] = struct{}{}
	}

	out := make([]Package, len(ms))
	for i, m := range ms {
		var deps []string
		for _, d := range m.PackageDependencies() {
			if _, ok := names[d]; ok {
				deps = append(deps, d)
			}
		}
		out[i] = Package{m: m, deps: deps}
	}
	return out
}

// Manifests unwraps a batch.
func Manifests[V Member](batch []V) []*workspace.Manifest {
	out := make([]*workspace.Manifest, len(batch))
	for i, v := range batch {
		out[i] = v.Manifest()
	}
	return out
}
