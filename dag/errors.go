package dag

import (
	"fmt"
	"strings"
)

// CycleError reports nodes whose dependencies never settle.
type CycleError struct {
	// Nodes are every node left unplaced, in input order.
	Nodes []string
	// Path is one concrete cycle, first node repeated at the end.
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return "dag: dependency cycle: " + strings.Join(e.Path, " -> ")
	}
	return "dag: dependency cycle between " + strings.Join(e.Nodes, ", ")
}

// UnknownNodeError reports a target name that is not in the graph.
type UnknownNodeError struct {
	Name string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("dag: unknown node %q", e.Name)
}

// Unresolved is a declared dependency name that matched no node.
type Unresolved struct {
	Node       string `json:"node" yaml:"node"`
	Dependency string `json:"dependency" yaml:"dependency"`
}

func (u Unresolved) String() string {
	return u.Node + " -> " + u.Dependency
}
