package rules

import "pybaseline/internal/core/domain"

// TranslateTest records the threshold pytest gated on. pytest-cov owns the
// coverage decision, so the exit code is taken as is.
func TranslateTest(cfg domain.InvocationConfig, res domain.ProcessResult) domain.TestResult {
	return domain.TestResult{
		ExitCode:          res.ExitCode,
		Stdout:            string(res.Stdout),
		Stderr:            string(res.Stderr),
		CoverageThreshold: cfg.CoverageThreshold,
	}
}
