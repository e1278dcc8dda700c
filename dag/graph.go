package dag

// Vertex is a schedulable member.
type Vertex interface {
	Name() string
	DependsOn() []string
}

// Graph is the resolved dependency graph of one scheduling pass.
// Edges are stored as indices into the input slice.
type Graph[V Vertex] struct {
	nodes      []V
	index      map[string]int
	deps       [][]int
	dets       [][]int
	unresolved []Unresolved
}

// Build resolves every node's declared dependencies against the node names.
//
// The first node with a given name wins lookups. Names that match nothing are
// dropped and recorded as Unresolved. A node naming itself, or naming the
// same dependency twice, gets no extra edge.
func Build[V Vertex](nodes []V) *Graph[V] {
	g := &Graph[V]{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		deps:  make([][]int, len(nodes)),
		dets:  make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, ok := g.index[n.Name()]; !ok {
			g.index[n.Name()] = i
		}
	}

	for i, n := range nodes {
		seen := make(map[int]struct{})
		for _, name := range n.DependsOn() {
			if name == n.Name() {
				continue
			}
			j, ok := g.index[name]
			if !ok {
				g.unresolved = append(g.unresolved, Unresolved{Node: n.Name(), Dependency: name})
				continue
			}
			if _, dup := seen[j]; dup || j == i {
				continue
			}
			seen[j] = struct{}{}
			g.deps[i] = append(g.deps[i], j)
			g.dets[j] = append(g.dets[j], i)
		}
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph[V]) Len() int { return len(g.nodes) }

// Nodes returns the nodes in input order.
func (g *Graph[V]) Nodes() []V { return g.nodes }

// Unresolved returns the dependency names that matched no node.
func (g *Graph[V]) Unresolved() []Unresolved { return g.unresolved }

// Roots returns the nodes without resolved dependencies, in input order.
func (g *Graph[V]) Roots() []V {
	var out []V
	for i, n := range g.nodes {
		if len(g.deps[i]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Lookup returns the node called name.
func (g *Graph[V]) Lookup(name string) (V, bool) {
	i, ok := g.index[name]
	if !ok {
		var zero V
		return zero, false
	}
	return g.nodes[i], true
}

// Deps returns the resolved dependencies of name.
func (g *Graph[V]) Deps(name string) []V {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.pick(g.deps[i])
}

// Dets returns the nodes that depend on name.
func (g *Graph[V]) Dets(name string) []V {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.pick(g.dets[i])
}

func (g *Graph[V]) pick(idx []int) []V {
	out := make([]V, len(idx))
	for k, i := range idx {
		out[k] = g.nodes[i]
	}
	return out
}

func (g *Graph[V]) names(idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = g.nodes[i].Name()
	}
	return out
}
