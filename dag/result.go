package dag

import "time"

// Status is the outcome of one node.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result holds the outcome of an engine run.
type Result struct {
	// Nodes are listed batch by batch, in batch order.
	Nodes    []NodeResult
	Duration time.Duration
}

// NodeResult holds the outcome of a single node.
type NodeResult struct {
	Name     string
	Batch    int
	Status   Status
	Duration time.Duration
	Error    error
}

// Get returns the first result recorded for name.
func (r *Result) Get(name string) (NodeResult, bool) {
	for _, nr := range r.Nodes {
		if nr.Name == name {
			return nr, true
		}
	}
	return NodeResult{}, false
}

// Count returns the number of nodes with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, nr := range r.Nodes {
		if nr.Status == s {
			n++
		}
	}
	return n
}
