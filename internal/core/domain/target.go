// internal/core/domain/target.go
package domain

import (
	"fmt"
	"path"
	"strings"
)

// TargetKind is the only target type pybaseline understands.
const TargetKind = "baseline_python_project"

// Default field values for a baseline_python_project.
var (
	DefaultSources     = []string{"**/*.py"}
	DefaultTestSources = []string{"tests/**/*.py"}
)

// Target is one baseline_python_project. Optional overrides are nil when
// the target defers to the global configuration.
type Target struct {
	Name string
	// Root is the slash-separated project directory relative to the workspace.
	Root        string
	Sources     []string
	TestSources []string

	PythonVersion     *string
	LineLength        *int
	Strict            *bool
	CoverageThreshold *int

	SkipLint      bool
	SkipFmt       bool
	SkipTypecheck bool
	SkipTest      bool
	SkipAudit     bool
}

// NewTarget creates a target with default source globs.
func NewTarget(name string) Target {
	return Target{
		Name:        name,
		Root:        ".",
		Sources:     append([]string(nil), DefaultSources...),
		TestSources: append([]string(nil), DefaultTestSources...),
	}
}

// Validate checks the target's shape.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: target name cannot be empty", ErrInvalidTarget)
	}
	if path.IsAbs(t.Root) || strings.HasPrefix(path.Clean(t.Root), "..") {
		return fmt.Errorf("%w: %s: root must stay inside the workspace", ErrInvalidTarget, t.Name)
	}
	if t.LineLength != nil && *t.LineLength <= 0 {
		return fmt.Errorf("%w: %s: line_length must be positive", ErrInvalidTarget, t.Name)
	}
	if t.CoverageThreshold != nil && (*t.CoverageThreshold < 0 || *t.CoverageThreshold > 100) {
		return fmt.Errorf("%w: %s: coverage_threshold must be within 0..100", ErrInvalidTarget, t.Name)
	}
	return nil
}

// HasSources reports whether the target carries the sources field.
func (t Target) HasSources() bool { return len(t.Sources) > 0 }

// HasTestSources reports whether the target carries the test_sources field.
func (t Target) HasTestSources() bool { return len(t.TestSources) > 0 }

// Skips reports whether the target opted out of goal.
func (t Target) Skips(goal Goal) bool {
	switch goal {
	case GoalLint:
		return t.SkipLint
	case GoalFmt:
		return t.SkipFmt
	case GoalTypecheck:
		return t.SkipTypecheck
	case GoalTest:
		return t.SkipTest
	case GoalAudit:
		return t.SkipAudit
	default:
		return false
	}
}

// ApplicableTargets keeps targets that carry the field goal needs and did
// not opt out of it. Order is preserved.
func ApplicableTargets(targets []Target, goal Goal) []Target {
	var out []Target
	for _, t := range targets {
		if t.Skips(goal) {
			continue
		}
		if goal == GoalTest {
			if !t.HasTestSources() {
				continue
			}
		} else if !t.HasSources() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Override applies the target's optional fields that matter to goal on top
// of base. The target wins wherever it sets a value.
func (t Target) Override(goal Goal, base InvocationConfig) InvocationConfig {
	out := base
	if t.PythonVersion != nil {
		out.TargetVersion = *t.PythonVersion
	}
	if t.LineLength != nil && (goal == GoalLint || goal == GoalFmt) {
		out.LineLength = *t.LineLength
	}
	if t.Strict != nil && goal == GoalTypecheck {
		out.Strict = *t.Strict
	}
	if t.CoverageThreshold != nil && goal == GoalTest {
		out.CoverageThreshold = *t.CoverageThreshold
	}
	return out
}
