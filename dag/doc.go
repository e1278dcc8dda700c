// Package dag layers workspace members into dependency-ordered batches and
// runs them.
//
// Build resolves declared dependency names into a Graph. The derived
// adjacency lives in the Graph, never on the members, so a graph can be
// rebuilt from the same input at any time with the same result.
//
// Two batching modes share the same graph:
//   - Batches: every node, Kahn layering from the roots
//   - TargetBatches: one target and its transitive dependencies, deepest first
//
// Engine runs batches in order and the nodes of a batch concurrently.
package dag
