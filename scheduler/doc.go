// Package scheduler turns workspace members into dag vertices and runs
// package manager commands for them.
//
// Platforms depend on the names in pmnps.platDependencies. Packages depend
// on the workspace packages among their dependencies and devDependencies.
// Executor runs the per-member command sequence (before hook, main command,
// after hook) and decides whether output is streamed or buffered.
package scheduler
