package rules

import "pybaseline/internal/core/domain"

func TranslateTypecheck(res domain.ProcessResult) domain.CheckResult {
	return domain.CheckResult{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
	}
}
