// internal/core/domain/target_test.go
package domain

import (
	"testing"

	"pybaseline/internal/platform/errors"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func baseConfig() InvocationConfig {
	return InvocationConfig{
		TargetVersion:     "3.11",
		LineLength:        120,
		Select:            []string{"E", "F"},
		Strict:            true,
		OutputFormat:      OutputText,
		CoverageThreshold: 80,
	}
}

func TestTarget_Override(t *testing.T) {
	tgt := NewTarget("api")
	tgt.LineLength = intPtr(88)
	tgt.PythonVersion = strPtr("3.12")

	got := tgt.Override(GoalLint, baseConfig())
	if got.LineLength != 88 || got.TargetVersion != "3.12" {
		t.Errorf("override not applied: %+v", got)
	}
	if got.CoverageThreshold != 80 || !got.Strict {
		t.Errorf("unset fields should keep global values: %+v", got)
	}
	if got.PyTag() != "py312" {
		t.Errorf("PyTag = %q", got.PyTag())
	}

	tgt.CoverageThreshold = intPtr(95)
	if got := tgt.Override(GoalLint, baseConfig()); got.CoverageThreshold != 80 {
		t.Errorf("coverage override should not leak into lint: %d", got.CoverageThreshold)
	}
	if got := tgt.Override(GoalTest, baseConfig()); got.CoverageThreshold != 95 {
		t.Errorf("coverage override missing for test: %d", got.CoverageThreshold)
	}
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Target)
		ok     bool
	}{
		{"defaults", func(*Target) {}, true},
		{"empty name", func(t *Target) { t.Name = " " }, false},
		{"escaping root", func(t *Target) { t.Root = "../other" }, false},
		{"absolute root", func(t *Target) { t.Root = "/srv" }, false},
		{"zero line length", func(t *Target) { t.LineLength = intPtr(0) }, false},
		{"coverage above 100", func(t *Target) { t.CoverageThreshold = intPtr(101) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := NewTarget("svc")
			tt.mutate(&tgt)
			err := tgt.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestApplicableTargets(t *testing.T) {
	lintOnly := NewTarget("lint-only")
	lintOnly.TestSources = []string{}
	skipper := NewTarget("skipper")
	skipper.SkipLint = true
	noSources := NewTarget("no-sources")
	noSources.Sources = nil

	targets := []Target{lintOnly, skipper, noSources}

	lint := ApplicableTargets(targets, GoalLint)
	if len(lint) != 1 || lint[0].Name != "lint-only" {
		t.Errorf("lint targets = %v", lint)
	}
	test := ApplicableTargets(targets, GoalTest)
	if len(test) != 2 || test[0].Name != "skipper" {
		t.Errorf("test targets = %v", test)
	}
}

func TestPartitionTargets(t *testing.T) {
	a := NewTarget("a")
	b := NewTarget("b")
	b.LineLength = intPtr(88)
	c := NewTarget("c")
	d := NewTarget("d")
	d.LineLength = intPtr(88)
	d.Strict = boolPtr(false) // lint ignores strict

	parts := PartitionTargets(GoalLint, []Target{a, b, c, d}, baseConfig())
	if len(parts) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(parts))
	}
	if got := parts[0].Names(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("first partition = %v", got)
	}
	if got := parts[1].Names(); len(got) != 2 || got[0] != "b" || got[1] != "d" {
		t.Errorf("second partition = %v", got)
	}
	if parts[1].Config.LineLength != 88 {
		t.Errorf("second partition line length = %d", parts[1].Config.LineLength)
	}
}

func TestInvocationConfig_Key(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	if a.Key() != b.Key() {
		t.Error("equal configs must share a key")
	}

	b.Select = []string{"E", "F", "I"}
	if a.Key() == b.Key() {
		t.Error("select change must change key")
	}

	c := baseConfig()
	c.Select = []string{"EF"}
	d := baseConfig()
	d.Select = []string{"E", "F"}
	if c.Key() == d.Key() {
		t.Error("list encoding must be unambiguous")
	}
}

func TestFmtResult_Summary(t *testing.T) {
	in := NewSnapshotUnchecked([]FileEntry{entry("a.py", "x=1"), entry("b.py", "y=1")})
	out := NewSnapshotUnchecked([]FileEntry{entry("a.py", "x = 1\n"), entry("b.py", "y = 1\n")})

	same := FmtResult{Input: in, Output: in, Changed: in.Changed(in)}
	if same.DidChange() || same.Summary() != "already formatted" {
		t.Errorf("unchanged summary = %q", same.Summary())
	}

	changed := FmtResult{Input: in, Output: out, Changed: in.Changed(out)}
	if changed.Summary() != "formatted 2 files" {
		t.Errorf("changed summary = %q", changed.Summary())
	}
}
