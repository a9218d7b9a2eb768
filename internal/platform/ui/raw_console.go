package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// RawConsole writes undecorated lines. It is used when stdout is not a
// terminal and in tests.
type RawConsole struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewRawConsole creates a RawConsole.
func NewRawConsole(stdout, stderr io.Writer) *RawConsole {
	return &RawConsole{stdout: stdout, stderr: stderr}
}

func (r *RawConsole) Print(msg string) {
	r.write(r.stdout, msg)
}

func (r *RawConsole) PrintErr(msg string) {
	r.write(r.stderr, msg)
}

func (r *RawConsole) Success(msg string) {
	r.write(r.stdout, StatusSuccess.Symbol()+" "+msg)
}

func (r *RawConsole) Failure(msg string) {
	r.write(r.stderr, StatusError.Symbol()+" "+msg)
}

func (r *RawConsole) Warning(msg string) {
	r.write(r.stderr, StatusWarning.Symbol()+" "+msg)
}

func (r *RawConsole) Skipped(msg string) {
	r.write(r.stdout, StatusSkipped.Symbol()+" "+msg)
}

func (r *RawConsole) Section(title string) {
	r.write(r.stdout, title)
}

func (r *RawConsole) write(w io.Writer, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(w, strings.TrimRight(msg, "\n"))
}
