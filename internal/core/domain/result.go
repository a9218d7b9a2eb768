// internal/core/domain/result.go
package domain

import (
	"fmt"
	"strings"
)

// LintResult wraps a ruff check run. Output is surfaced verbatim.
type LintResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r LintResult) Passed() bool { return r.ExitCode == 0 }

// CheckResult wraps a ty check run.
type CheckResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r CheckResult) Passed() bool { return r.ExitCode == 0 }

// FmtResult compares the formatter's output snapshot with its input.
type FmtResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Input    Snapshot
	Output   Snapshot
	// Changed lists the files the formatter rewrote.
	Changed []string
}

// DidChange reports whether output differs from input.
func (r FmtResult) DidChange() bool {
	return r.Input.Digest() != r.Output.Digest() && len(r.Changed) > 0
}

// Summary is "already formatted" or "formatted N files".
func (r FmtResult) Summary() string {
	if !r.DidChange() {
		return "already formatted"
	}
	n := len(r.Changed)
	if n == 1 {
		return "formatted 1 file"
	}
	return fmt.Sprintf("formatted %d files", n)
}

// TestResult wraps a pytest run. Coverage gating is pytest's own.
type TestResult struct {
	ExitCode          int
	Stdout            string
	Stderr            string
	CoverageThreshold int
}

func (r TestResult) Passed() bool { return r.ExitCode == 0 }

// AuditResult wraps a uv audit run. VulnerabilitiesFound is a line-count
// heuristic and never gates.
type AuditResult struct {
	ExitCode             int
	Stdout               string
	Stderr               string
	VulnerabilitiesFound int
}

func (r AuditResult) Passed() bool { return r.ExitCode == 0 }

// Metadata keys recorded on GoalResult.
const (
	MetaPartitions      = "partitions"
	MetaFiles           = "files"
	MetaFilesChanged    = "files_changed"
	MetaVulnerabilities = "vulnerabilities_found"
)

// GoalResult is what a goal handler reports back to the CLI.
type GoalResult struct {
	Goal     Goal
	ExitCode int
	Stdout   string
	Stderr   string
	// Message is set when the goal short-circuited without running a tool.
	Message  string
	Metadata map[string]int
}

// NewGoalResult returns a zero-exit result with initialized metadata.
func NewGoalResult(goal Goal) *GoalResult {
	return &GoalResult{Goal: goal, Metadata: make(map[string]int)}
}

// ShortCircuit builds an exit-0 result carrying only a message.
func ShortCircuit(goal Goal, msg string) *GoalResult {
	r := NewGoalResult(goal)
	r.Message = msg
	return r
}

// AppendOutput accumulates process output across partitions.
func (r *GoalResult) AppendOutput(stdout, stderr string) {
	r.Stdout = joinOutput(r.Stdout, stdout)
	r.Stderr = joinOutput(r.Stderr, stderr)
}

func (r *GoalResult) Skipped() bool {
	return r.Message != ""
}

func joinOutput(acc, next string) string {
	next = strings.TrimRight(next, "\n")
	switch {
	case next == "":
		return acc
	case acc == "":
		return next
	default:
		return acc + "\n" + next
	}
}
