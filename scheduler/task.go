package scheduler

import (
	"strings"

	"github.com/kbukum/pmnps/resilience"
	"github.com/kbukum/pmnps/workspace"
)

// Task describes the main command every member of a run executes.
type Task struct {
	// Name labels spans, metrics and logs, e.g. "build".
	Name string
	// Args returns the package manager arguments for m. param is the
	// resolved main-command parameter, possibly empty.
	Args func(m *workspace.Manifest, param string) []string
	// Param is the raw --param value.
	Param string
	// Hooks runs pmnps.buildHook before and after the main command.
	Hooks bool
	// Retry retries the main command. Nil runs it once.
	Retry *resilience.RetryConfig
	// Header prefixes the member name in buffered output headers.
	Header string
}

// BuildTask runs `run build[-mode] [-- param]` with hooks.
func BuildTask(mode, param string) Task {
	script := workspace.ScriptKey("build", mode)
	return Task{
		Name:  "build",
		Param: param,
		Hooks: true,
		Args: func(_ *workspace.Manifest, param string) []string {
			args := []string{"run", script}
			if words := strings.Fields(param); len(words) > 0 {
				args = append(append(args, "--"), words...)
			}
			return args
		},
	}
}

// InstallTask runs `install`, retried per retry.
func InstallTask(retry resilience.RetryConfig) Task {
	return Task{
		Name:  "install",
		Retry: &retry,
		Args:  func(*workspace.Manifest, string) []string { return []string{"install"} },
	}
}

// PublishTask runs `publish`. Scoped packages publish with --access=public;
// platforms never get the flag.
func PublishTask(otp string) Task {
	return Task{
		Name:   "publish",
		Header: "publish",
		Args: func(m *workspace.Manifest, _ string) []string {
			args := []string{"publish"}
			if m.Kind == workspace.KindPackage && m.Scoped() {
				args = append(args, "--access=public")
			}
			if otp != "" {
				args = append(args, "--otp", otp)
			}
			return args
		},
	}
}

// StartTask runs `start`.
func StartTask() Task {
	return Task{
		Name: "start",
		Args: func(*workspace.Manifest, string) []string { return []string{"start"} },
	}
}
