// Package ui renders goal progress and results for humans.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Mode selects a console implementation.
type Mode string

const (
	ModeAuto   Mode = "auto"   // pterm on a terminal, raw otherwise
	ModePretty Mode = "pretty" // always pterm
	ModeRaw    Mode = "raw"    // plain lines, no color
	ModeQuiet  Mode = "quiet"  // discard everything
)

// Console is the user-facing output channel. Tool output is passed
// through verbatim; status lines are styled per implementation.
type Console interface {
	// Print writes msg to stdout.
	Print(msg string)
	// PrintErr writes msg to stderr.
	PrintErr(msg string)
	Success(msg string)
	Failure(msg string)
	// Warning flags something the user should know but that does not fail
	// the goal.
	Warning(msg string)
	// Skipped reports a goal that finished without running a tool.
	Skipped(msg string)
	// Section announces a goal or partition.
	Section(title string)
}

// New builds the console for mode over stdout and stderr.
func New(mode Mode, stdout, stderr io.Writer) Console {
	switch mode {
	case ModeQuiet:
		return NoopConsole{}
	case ModePretty:
		return NewPTermConsole(stdout, stderr)
	case ModeRaw:
		return NewRawConsole(stdout, stderr)
	default:
		if isTerminal(stdout) {
			return NewPTermConsole(stdout, stderr)
		}
		return NewRawConsole(stdout, stderr)
	}
}

// NewStd builds the console for mode over the process streams.
func NewStd(mode Mode) Console {
	return New(mode, os.Stdout, os.Stderr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseMode maps a flag value to a Mode, defaulting to ModeAuto.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModePretty, ModeRaw, ModeQuiet:
		return Mode(s)
	default:
		return ModeAuto
	}
}

// NoopConsole discards all output.
type NoopConsole struct{}

func (NoopConsole) Print(string)    {}
func (NoopConsole) PrintErr(string) {}
func (NoopConsole) Success(string)  {}
func (NoopConsole) Failure(string)  {}
func (NoopConsole) Warning(string)  {}
func (NoopConsole) Skipped(string)  {}
func (NoopConsole) Section(string)  {}
