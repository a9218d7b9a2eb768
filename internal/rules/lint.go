package rules

import "pybaseline/internal/core/domain"

// TranslateLint surfaces ruff's output verbatim.
func TranslateLint(res domain.ProcessResult) domain.LintResult {
	return domain.LintResult{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
	}
}
