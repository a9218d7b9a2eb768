// Package rules builds tool command lines and translates process results
// into goal results. Everything here is pure.
package rules

import (
	"strconv"
	"strings"

	"pybaseline/internal/core/domain"
)

// ruffFormat maps the shared output format onto ruff's names.
func ruffFormat(f domain.OutputFormat) string {
	if f == domain.OutputText || f == "" {
		return "concise"
	}
	return string(f)
}

// LintArgv builds `ruff check`.
func LintArgv(exe string, cfg domain.InvocationConfig, files []string) []string {
	argv := []string{
		exe,
		"check",
		"--target-version=" + cfg.PyTag(),
		"--line-length=" + strconv.Itoa(cfg.LineLength),
	}
	if len(cfg.Select) > 0 {
		argv = append(argv, "--select="+strings.Join(cfg.Select, ","))
	}
	if len(cfg.Ignore) > 0 {
		argv = append(argv, "--ignore="+strings.Join(cfg.Ignore, ","))
	}
	for _, p := range cfg.PerFileIgnores {
		argv = append(argv, "--config=lint.per-file-ignores."+strconv.Quote(p.Pattern)+"="+tomlList(p.Rules))
	}
	argv = append(argv, "--output-format="+ruffFormat(cfg.OutputFormat))
	return append(argv, files...)
}

// FmtArgv builds `ruff format`. Files are rewritten in place.
func FmtArgv(exe string, cfg domain.InvocationConfig, files []string) []string {
	argv := []string{
		exe,
		"format",
		"--target-version=" + cfg.PyTag(),
		"--line-length=" + strconv.Itoa(cfg.LineLength),
	}
	if cfg.QuoteStyle != "" {
		argv = append(argv, "--config=format.quote-style="+strconv.Quote(cfg.QuoteStyle))
	}
	if cfg.IndentStyle != "" {
		argv = append(argv, "--config=format.indent-style="+strconv.Quote(cfg.IndentStyle))
	}
	return append(argv, files...)
}

// TypecheckOptions are ty settings that do not vary per target.
type TypecheckOptions struct {
	ReportMissingImports bool
	StubPath             string
}

// TypecheckArgv builds `ty check`.
func TypecheckArgv(exe string, cfg domain.InvocationConfig, opts TypecheckOptions, files []string) []string {
	argv := []string{
		exe,
		"check",
		"--python-version=" + cfg.TargetVersion,
	}
	if cfg.Strict {
		argv = append(argv, "--strict")
	}
	argv = append(argv, "--output-format="+ruffFormat(cfg.OutputFormat))
	if !opts.ReportMissingImports {
		argv = append(argv, "--ignore=unresolved-import")
	}
	if opts.StubPath != "" {
		argv = append(argv, "--extra-search-path="+opts.StubPath)
	}
	return append(argv, files...)
}

// TestArgv builds the pytest invocation with coverage over srcRoots.
func TestArgv(exe string, cfg domain.InvocationConfig, srcRoots, tests []string) []string {
	argv := []string{
		exe,
		"-v",
		"--strict-markers",
		"--strict-config",
		"-ra",
		"--tb=short",
	}
	for _, root := range srcRoots {
		argv = append(argv, "--cov="+root)
	}
	argv = append(argv,
		"--cov-report=term-missing",
		"--cov-fail-under="+strconv.Itoa(cfg.CoverageThreshold),
		"--cov-branch",
	)
	return append(argv, tests...)
}

// AuditOptions configures `uv audit`.
type AuditOptions struct {
	OutputFormat domain.OutputFormat
	IgnoreVulns  []string
	ExtraArgs    []string
}

// AuditArgv builds `uv audit`. The lock file travels in the input set.
func AuditArgv(exe string, opts AuditOptions) []string {
	format := opts.OutputFormat
	if format == "" {
		format = domain.OutputText
	}
	argv := []string{exe, "audit", "--output-format=" + string(format)}
	for _, id := range opts.IgnoreVulns {
		argv = append(argv, "--ignore", id)
	}
	return append(argv, opts.ExtraArgs...)
}

func tomlList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
