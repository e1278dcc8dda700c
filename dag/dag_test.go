package dag

import (
	stderrors "errors"
	"reflect"
	"testing"
)

// --- test helpers ---

type member struct {
	name string
	deps []string
}

func (m member) Name() string        { return m.name }
func (m member) DependsOn() []string { return m.deps }

func node(name string, deps ...string) member { return member{name: name, deps: deps} }

func names[V Vertex](nodes []V) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func batchNames[V Vertex](batches [][]V) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		out[i] = names(b)
	}
	return out
}

// --- Build tests ---

func TestBuild_DepsAndDetsAreInverse(t *testing.T) {
	g := Build([]member{
		node("web", "api", "auth"),
		node("api", "auth"),
		node("auth"),
	})

	for _, n := range g.Nodes() {
		for _, d := range g.Deps(n.Name()) {
			if !contains(names(g.Dets(d.Name())), n.Name()) {
				t.Errorf("%s depends on %s but is not among its dets", n.Name(), d.Name())
			}
		}
		for _, d := range g.Dets(n.Name()) {
			if !contains(names(g.Deps(d.Name())), n.Name()) {
				t.Errorf("%s is a det of %s but not among its deps", d.Name(), n.Name())
			}
		}
	}
	if got := names(g.Dets("auth")); !reflect.DeepEqual(got, []string{"web", "api"}) {
		t.Errorf("unexpected dets of auth: %v", got)
	}
}

func TestBuild_Unresolved(t *testing.T) {
	g := Build([]member{node("web", "api", "ghost"), node("api")})

	if got := names(g.Deps("web")); !reflect.DeepEqual(got, []string{"api"}) {
		t.Errorf("expected deps [api], got %v", got)
	}
	want := []Unresolved{{Node: "web", Dependency: "ghost"}}
	if !reflect.DeepEqual(g.Unresolved(), want) {
		t.Errorf("expected %v, got %v", want, g.Unresolved())
	}
	if g.Unresolved()[0].String() != "web -> ghost" {
		t.Errorf("unexpected string %q", g.Unresolved()[0].String())
	}
}

func TestBuild_SelfAndDuplicateDependencies(t *testing.T) {
	g := Build([]member{node("a", "a", "b", "b"), node("b")})

	if got := names(g.Deps("a")); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("expected one edge to b, got %v", got)
	}
	if got := names(g.Dets("b")); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("expected one det a, got %v", got)
	}
	if len(g.Unresolved()) != 0 {
		t.Errorf("self dependency must not be unresolved: %v", g.Unresolved())
	}
}

func TestBuild_DuplicateNamesFirstWins(t *testing.T) {
	first := member{name: "x", deps: nil}
	second := member{name: "x", deps: []string{"y"}}
	g := Build([]member{first, second, node("y"), node("z", "x")})

	got, ok := g.Lookup("x")
	if !ok || !reflect.DeepEqual(got, first) {
		t.Errorf("expected first x, got %v", got)
	}
	if g.Len() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.Len())
	}
	batches, err := g.Batches()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"x", "y"}, {"x", "z"}}
	if got := batchNames(batches); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuild_Roots(t *testing.T) {
	g := Build([]member{node("c", "a"), node("a"), node("b"), node("d", "ghost")})
	if got := names(g.Roots()); !reflect.DeepEqual(got, []string{"a", "b", "d"}) {
		t.Errorf("expected roots [a b d], got %v", got)
	}
	if _, ok := g.Lookup("ghost"); ok {
		t.Error("unexpected lookup hit")
	}
	if g.Deps("ghost") != nil || g.Dets("ghost") != nil {
		t.Error("expected nil adjacency for unknown name")
	}
}

// --- Batches tests ---

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		nodes []member
		want  [][]string
	}{
		{
			name:  "linear",
			nodes: []member{node("c", "b"), node("b", "a"), node("a")},
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "diamond",
			nodes: []member{node("d", "b", "c"), node("b", "a"), node("c", "a"), node("a")},
			want:  [][]string{{"a"}, {"b", "c"}, {"d"}},
		},
		{
			name:  "uneven diamond",
			nodes: []member{node("t", "a", "b"), node("a", "b"), node("b")},
			want:  [][]string{{"b"}, {"a"}, {"t"}},
		},
		{
			name:  "no edges keeps input order",
			nodes: []member{node("b"), node("a"), node("c")},
			want:  [][]string{{"b", "a", "c"}},
		},
		{
			name:  "empty",
			nodes: nil,
			want:  [][]string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			batches, err := Build(tc.nodes).Batches()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := batchNames(batches)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBatches_EveryDependencyInEarlierBatch(t *testing.T) {
	nodes := []member{
		node("app", "ui", "api"), node("ui", "core"), node("api", "core", "db"),
		node("core"), node("db"), node("cli", "core"),
	}
	g := Build(nodes)
	batches, err := g.Batches()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	placed := map[string]int{}
	total := 0
	for k, b := range batches {
		for _, n := range b {
			placed[n.Name()] = k
			total++
		}
	}
	if total != len(nodes) {
		t.Fatalf("expected %d nodes placed, got %d", len(nodes), total)
	}
	for _, n := range nodes {
		for _, d := range g.Deps(n.Name()) {
			if placed[d.Name()] >= placed[n.Name()] {
				t.Errorf("%s (batch %d) not after %s (batch %d)", n.Name(), placed[n.Name()], d.Name(), placed[d.Name()])
			}
		}
	}
}

func TestBatches_Cycle(t *testing.T) {
	g := Build([]member{node("a", "b"), node("b", "a"), node("c", "a"), node("d")})
	_, err := g.Batches()

	var cycle *CycleError
	if !stderrors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycle.Nodes, []string{"a", "b", "c"}) {
		t.Errorf("expected unplaced [a b c], got %v", cycle.Nodes)
	}
	if !reflect.DeepEqual(cycle.Path, []string{"a", "b", "a"}) {
		t.Errorf("expected path a -> b -> a, got %v", cycle.Path)
	}
	if cycle.Error() != "dag: dependency cycle: a -> b -> a" {
		t.Errorf("unexpected message %q", cycle.Error())
	}
}

func TestBatches_Idempotent(t *testing.T) {
	nodes := []member{node("web", "api"), node("api", "auth"), node("auth"), node("docs")}
	first, err := Build(nodes).Batches()
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(nodes).Batches()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(batchNames(first), batchNames(second)) {
		t.Errorf("expected identical batches, got %v and %v", batchNames(first), batchNames(second))
	}
	if !reflect.DeepEqual(nodes[0].deps, []string{"api"}) {
		t.Error("input must not be mutated")
	}
}

// --- TargetBatches tests ---

func TestTargetBatches(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []member
		target string
		want   [][]string
	}{
		{
			name:   "chain",
			nodes:  []member{node("T", "A"), node("A", "B"), node("B"), node("other")},
			target: "T",
			want:   [][]string{{"B"}, {"A"}, {"T"}},
		},
		{
			name:   "diamond uses longest distance",
			nodes:  []member{node("T", "A", "B"), node("A", "B"), node("B")},
			target: "T",
			want:   [][]string{{"B"}, {"A"}, {"T"}},
		},
		{
			name:   "siblings share a level",
			nodes:  []member{node("T", "B", "A"), node("A"), node("B")},
			target: "T",
			want:   [][]string{{"A", "B"}, {"T"}},
		},
		{
			name:   "no dependencies",
			nodes:  []member{node("T"), node("A")},
			target: "T",
			want:   [][]string{{"T"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			batches, err := Build(tc.nodes).TargetBatches(tc.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := batchNames(batches); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTargetLevels(t *testing.T) {
	g := Build([]member{node("T", "A", "B"), node("A", "B"), node("B")})
	levels, err := g.TargetLevels("T")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"T": 0, "A": 1, "B": 2}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("expected %v, got %v", want, levels)
	}
}

func TestTargetBatches_UnknownTarget(t *testing.T) {
	_, err := Build([]member{node("a")}).TargetBatches("nope")
	var unknown *UnknownNodeError
	if !stderrors.As(err, &unknown) || unknown.Name != "nope" {
		t.Fatalf("expected UnknownNodeError, got %v", err)
	}
}

func TestTargetBatches_Cycle(t *testing.T) {
	g := Build([]member{node("T", "A"), node("A", "B"), node("B", "A")})
	_, err := g.TargetBatches("T")

	var cycle *CycleError
	if !stderrors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycle.Path, []string{"A", "B", "A"}) {
		t.Errorf("expected path A -> B -> A, got %v", cycle.Path)
	}
	if !reflect.DeepEqual(cycle.Nodes, []string{"A", "B"}) {
		t.Errorf("expected nodes [A B], got %v", cycle.Nodes)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
