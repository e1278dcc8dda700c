// Package output renders user-facing CLI messages and reports.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	descColor    = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgMagenta)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// DisableColor turns colouring off for every printer.
func DisableColor() { color.NoColor = true }

// Printer writes coloured messages. Info, success and desc go to out; warn
// and error go to err. Each call is written as one unit.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// New returns a printer writing to out and err.
func New(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// Stdio returns a printer on os.Stdout and os.Stderr.
func Stdio() *Printer { return New(os.Stdout, os.Stderr) }

// Out is the writer for regular output.
func (p *Printer) Out() io.Writer { return p.out }

// Err is the writer for diagnostics.
func (p *Printer) Err() io.Writer { return p.err }

func (p *Printer) Info(format string, args ...any)    { p.line(p.out, infoColor, format, args...) }
func (p *Printer) Success(format string, args ...any) { p.line(p.out, successColor, format, args...) }
func (p *Printer) Desc(format string, args ...any)    { p.line(p.out, descColor, format, args...) }
func (p *Printer) Warn(format string, args ...any)    { p.line(p.err, warnColor, format, args...) }
func (p *Printer) Error(format string, args ...any)   { p.line(p.err, errorColor, format, args...) }

// Section prints a member's buffered output under its header: stdout as
// desc text, stderr as a warning. The whole block is written under one lock
// so concurrent sections never interleave.
func (p *Printer) Section(name, stdout, stderr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	writeLine(p.out, headerColor, fmt.Sprintf("==================== %s ====================", name))
	if s := strings.TrimRight(stdout, "\n"); strings.TrimSpace(s) != "" {
		writeLine(p.out, descColor, s)
	}
	if s := strings.TrimRight(stderr, "\n"); strings.TrimSpace(s) != "" {
		writeLine(p.err, warnColor, s)
	}
}

func (p *Printer) line(w io.Writer, c *color.Color, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeLine(w, c, fmt.Sprintf(format, args...))
}

func writeLine(w io.Writer, c *color.Color, s string) {
	_, _ = c.Fprintln(w, s)
}
