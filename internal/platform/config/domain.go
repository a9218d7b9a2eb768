// internal/platform/config/domain.go
package config

import (
	"path"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/errors"
)

// Tool names as published by astral-sh.
const (
	ToolRuff = "ruff"
	ToolTy   = "ty"
	ToolUV   = "uv"
)

// ToolSpec builds the immutable spec for a downloadable tool.
func (c Config) ToolSpec(name string) (domain.ToolSpec, error) {
	var version string
	var lines []string
	switch name {
	case ToolRuff:
		version, lines = c.Ruff.Version, c.Ruff.KnownVersions
	case ToolTy:
		version, lines = c.Ty.Version, c.Ty.KnownVersions
	case ToolUV:
		version, lines = c.UV.Version, c.UV.KnownVersions
	default:
		return domain.ToolSpec{}, errors.Wrapf(errors.ErrInvalidConfig, "unknown tool %q", name)
	}

	known := make([]domain.KnownVersion, 0, len(lines))
	for _, line := range lines {
		kv, err := domain.ParseKnownVersion(line)
		if err != nil {
			return domain.ToolSpec{}, errors.Wrapf(err, "%s known_versions", name)
		}
		known = append(known, kv)
	}
	return domain.NewToolSpec(name, version, known), nil
}

// ToolNames lists the downloadable tools in a stable order.
func ToolNames() []string {
	return []string{ToolRuff, ToolTy, ToolUV}
}

// LintConfig is the global invocation config for ruff check.
func (c Config) LintConfig() (domain.InvocationConfig, error) {
	format, err := domain.ParseOutputFormat(c.Ruff.OutputFormat)
	if err != nil {
		return domain.InvocationConfig{}, errors.Wrap(err, "baseline-ruff.output_format")
	}
	return domain.InvocationConfig{
		TargetVersion:  c.Baseline.PythonVersion,
		LineLength:     c.Baseline.LineLength,
		Select:         c.Ruff.Select,
		Ignore:         c.Ruff.Ignore,
		OutputFormat:   format,
		PerFileIgnores: c.perFileIgnores(),
	}, nil
}

// FmtConfig is the global invocation config for ruff format.
func (c Config) FmtConfig() domain.InvocationConfig {
	return domain.InvocationConfig{
		TargetVersion: c.Baseline.PythonVersion,
		LineLength:    c.Baseline.LineLength,
		QuoteStyle:    c.Ruff.QuoteStyle,
		IndentStyle:   c.Ruff.IndentStyle,
	}
}

// TypecheckConfig is the global invocation config for ty check.
func (c Config) TypecheckConfig() (domain.InvocationConfig, error) {
	format, err := domain.ParseOutputFormat(c.Ty.OutputFormat)
	if err != nil {
		return domain.InvocationConfig{}, errors.Wrap(err, "baseline-ty.output_format")
	}
	return domain.InvocationConfig{
		TargetVersion: c.Baseline.PythonVersion,
		Strict:        c.Baseline.StrictMode && c.Ty.Strict,
		OutputFormat:  format,
	}, nil
}

// TestConfig is the global invocation config for pytest.
func (c Config) TestConfig() domain.InvocationConfig {
	return domain.InvocationConfig{
		TargetVersion:     c.Baseline.PythonVersion,
		CoverageThreshold: c.Baseline.CoverageThreshold,
	}
}

// AuditFormat is uv's report format.
func (c Config) AuditFormat() (domain.OutputFormat, error) {
	format, err := domain.ParseOutputFormat(c.UV.OutputFormat)
	if err != nil {
		return "", errors.Wrap(err, "baseline-uv.output_format")
	}
	return format, nil
}

// perFileIgnores relaxes rules for test files and package initializers.
func (c Config) perFileIgnores() []domain.PerFileIgnore {
	var out []domain.PerFileIgnore
	if len(c.Ruff.SkipTestsRules) > 0 {
		for _, root := range c.Baseline.TestRoots {
			out = append(out, domain.PerFileIgnore{
				Pattern: path.Join(root, "**", "*.py"),
				Rules:   c.Ruff.SkipTestsRules,
			})
		}
	}
	if len(c.Ruff.SkipInitRules) > 0 {
		out = append(out, domain.PerFileIgnore{Pattern: "__init__.py", Rules: c.Ruff.SkipInitRules})
	}
	return out
}

// DomainTargets converts the configured target entries. An empty list
// stays empty; goals report "no targets" in that case.
func (c Config) DomainTargets() ([]domain.Target, error) {
	out := make([]domain.Target, 0, len(c.Targets))
	for _, tc := range c.Targets {
		t := domain.NewTarget(tc.Name)
		if tc.Root != "" {
			t.Root = tc.Root
		}
		if tc.Sources != nil {
			t.Sources = tc.Sources
		}
		if tc.TestSources != nil {
			t.TestSources = tc.TestSources
		}
		t.PythonVersion = tc.PythonVersion
		t.LineLength = tc.LineLength
		t.Strict = tc.Strict
		t.CoverageThreshold = tc.CoverageThreshold
		t.SkipLint = tc.SkipLint
		t.SkipFmt = tc.SkipFmt
		t.SkipTypecheck = tc.SkipTypecheck
		t.SkipTest = tc.SkipTest
		t.SkipAudit = tc.SkipAudit
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
