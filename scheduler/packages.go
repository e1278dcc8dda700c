package scheduler

import (
	"github.com/kbukum/pmnps/dag"
	"github.com/kbukum/pmnps/workspace"
)

// PlanPackages batches the candidates that are used: named in used, or
// depended on, directly or transitively, by a used candidate. Batching is
// the same Kahn layering as dag.Graph.Batches.
func PlanPackages(candidates []*workspace.Manifest, used []string) ([][]Package, error) {
	pkgs := Packages(candidates)
	g := dag.Build(pkgs)

	marked := make(map[string]bool)
	stack := append([]string(nil), used...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if marked[name] {
			continue
		}
		if _, ok := g.Lookup(name); !ok {
			continue
		}
		marked[name] = true
		for _, d := range g.Deps(name) {
			stack = append(stack, d.Name())
		}
	}

	var sub []Package
	for _, p := range pkgs {
		if marked[p.Name()] {
			sub = append(sub, p)
		}
	}
	return dag.Build(sub).Batches()
}

// FilterBatches keeps the members for which keep returns true and drops
// batches left empty.
func FilterBatches[V Member](batches [][]V, keep func(V) bool) [][]V {
	var out [][]V
	for _, b := range batches {
		var kept []V
		for _, v := range b {
			if keep(v) {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}
