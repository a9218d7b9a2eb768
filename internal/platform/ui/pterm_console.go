package ui

import (
	"io"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// PTermConsole styles status lines with pterm. Tool output is printed
// unstyled so ruff and ty keep their own coloring.
type PTermConsole struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewPTermConsole creates a PTermConsole.
func NewPTermConsole(stdout, stderr io.Writer) *PTermConsole {
	return &PTermConsole{stdout: stdout, stderr: stderr}
}

func (p *PTermConsole) Print(msg string) {
	p.println(p.stdout, strings.TrimRight(msg, "\n"))
}

func (p *PTermConsole) PrintErr(msg string) {
	p.println(p.stderr, strings.TrimRight(msg, "\n"))
}

func (p *PTermConsole) Success(msg string) {
	p.println(p.stdout, StatusSuccess.Style().Sprint(StatusSuccess.Symbol()+" "+msg))
}

func (p *PTermConsole) Failure(msg string) {
	p.println(p.stderr, StatusError.Style().Sprint(StatusError.Symbol()+" "+msg))
}

func (p *PTermConsole) Warning(msg string) {
	p.println(p.stderr, StatusWarning.Style().Sprint(StatusWarning.Symbol()+" "+msg))
}

func (p *PTermConsole) Skipped(msg string) {
	p.println(p.stdout, StatusSkipped.Style().Sprint(StatusSkipped.Symbol()+" "+msg))
}

func (p *PTermConsole) Section(title string) {
	p.println(p.stdout, StyleHeader.Sprint(title))
}

func (p *PTermConsole) println(w io.Writer, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Fprintln(w, s)
}
