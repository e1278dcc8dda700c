package process

import (
	"io"
	"strings"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Label names the workspace member the command runs for. Used in errors.
	Label string
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout and Stderr receive output as it is produced, in addition to
	// the copy kept in Result. May be nil.
	Stdout io.Writer
	Stderr io.Writer
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// Shell returns a command running script through `sh -c` in dir.
func Shell(label, dir, script string) Command {
	return Command{
		Label:  label,
		Binary: "sh",
		Args:   []string{"-c", script},
		Dir:    dir,
	}
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if c.Binary == "sh" && len(c.Args) == 2 && c.Args[0] == "-c" {
		return c.Args[1]
	}
	parts := append([]string{c.Binary}, c.Args...)
	return strings.Join(parts, " ")
}
