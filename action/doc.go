// Package action implements the pmnps commands on top of the workspace
// reader, the dependency graph and the scheduler.
//
// Every action receives its configuration through Env; nothing is cached
// between invocations. Each invocation gets a run id that tags its logs and
// its root span.
package action
