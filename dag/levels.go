package dag

import (
	"slices"
	"sort"
)

// Batches groups every node by dependency level using Kahn's algorithm.
// Batch 0 holds the roots; a node joins batch k once all of its
// dependencies sit in earlier batches. Nodes in a batch keep input order.
// Nodes that never become ready are reported as a *CycleError.
func (g *Graph[V]) Batches() ([][]V, error) {
	inDegree := make([]int, len(g.nodes))
	var queue []int
	for i := range g.nodes {
		inDegree[i] = len(g.deps[i])
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	var batches [][]V
	visited := 0

	for len(queue) > 0 {
		batches = append(batches, g.pick(queue))
		visited += len(queue)

		var next []int
		for _, i := range queue {
			for _, d := range g.dets[i] {
				inDegree[d]--
				if inDegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		sort.Ints(next)
		queue = next
	}

	if visited != len(g.nodes) {
		var left []int
		for i, deg := range inDegree {
			if deg > 0 {
				left = append(left, i)
			}
		}
		return nil, &CycleError{Nodes: g.names(left), Path: g.names(g.cycleAmong(left))}
	}
	return batches, nil
}

// TargetBatches returns target and its transitive dependencies grouped by
// level, deepest dependencies first and target last.
func (g *Graph[V]) TargetBatches(target string) ([][]V, error) {
	order, level, err := g.targetLevels(target)
	if err != nil {
		return nil, err
	}

	depth := 0
	for _, l := range level {
		depth = max(depth, l)
	}
	groups := make([][]int, depth+1)
	for _, i := range order {
		groups[level[i]] = append(groups[level[i]], i)
	}

	batches := make([][]V, 0, len(groups))
	for l := depth; l >= 0; l-- {
		sort.Ints(groups[l])
		batches = append(batches, g.pick(groups[l]))
	}
	return batches, nil
}

// TargetLevels returns the longest distance from target of every node it
// depends on, transitively. Target itself is level 0.
func (g *Graph[V]) TargetLevels(target string) (map[string]int, error) {
	_, level, err := g.targetLevels(target)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(level))
	for i, l := range level {
		out[g.nodes[i].Name()] = l
	}
	return out, nil
}

func (g *Graph[V]) targetLevels(target string) ([]int, map[int]int, error) {
	order, err := g.dependencyOrder(target)
	if err != nil {
		return nil, nil, err
	}
	// order lists every node before its dependencies, so one pass settles
	// the maximum over all paths.
	level := map[int]int{order[0]: 0}
	for _, u := range order {
		for _, d := range g.deps[u] {
			if l := level[u] + 1; l > level[d] {
				level[d] = l
			}
		}
	}
	return order, level, nil
}

const (
	white = iota
	grey
	black
)

// dependencyOrder walks deps from target depth-first and returns the
// reverse postorder: target first, every node before its dependencies.
func (g *Graph[V]) dependencyOrder(target string) ([]int, error) {
	t, ok := g.index[target]
	if !ok {
		return nil, &UnknownNodeError{Name: target}
	}

	type frame struct{ node, next int }
	color := make([]uint8, len(g.nodes))
	color[t] = grey
	stack := []frame{{node: t}}
	var post []int

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(g.deps[top.node]) {
			d := g.deps[top.node][top.next]
			top.next++
			switch color[d] {
			case grey:
				var path []int
				for k := range stack {
					if stack[k].node == d {
						for _, f := range stack[k:] {
							path = append(path, f.node)
						}
						break
					}
				}
				members := slices.Clone(path)
				sort.Ints(members)
				return nil, &CycleError{Nodes: g.names(members), Path: g.names(append(path, d))}
			case white:
				color[d] = grey
				stack = append(stack, frame{node: d})
			}
			continue
		}
		color[top.node] = black
		post = append(post, top.node)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(post)
	return post, nil
}

// cycleAmong follows unplaced dependencies from the first unplaced node
// until a node repeats. Every unplaced node has an unplaced dependency.
func (g *Graph[V]) cycleAmong(left []int) []int {
	if len(left) == 0 {
		return nil
	}
	unplaced := make(map[int]bool, len(left))
	for _, i := range left {
		unplaced[i] = true
	}

	pos := make(map[int]int)
	var path []int
	cur := left[0]
	for {
		if p, seen := pos[cur]; seen {
			return append(path[p:], cur)
		}
		pos[cur] = len(path)
		path = append(path, cur)

		next := -1
		for _, d := range g.deps[cur] {
			if unplaced[d] {
				next = d
				break
			}
		}
		if next < 0 {
			return nil
		}
		cur = next
	}
}
