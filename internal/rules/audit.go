package rules

import (
	"strings"

	"pybaseline/internal/core/domain"
)

var vulnerabilityMarkers = []string{"vulnerability", "cve-", "ghsa-"}

// CountVulnerabilities counts output lines that mention a vulnerability,
// CVE or GHSA identifier, case-insensitively. It is a display heuristic.
func CountVulnerabilities(stdout string) int {
	n := 0
	for _, line := range strings.Split(stdout, "\n") {
		lower := strings.ToLower(line)
		for _, m := range vulnerabilityMarkers {
			if strings.Contains(lower, m) {
				n++
				break
			}
		}
	}
	return n
}

// TranslateAudit only counts findings when uv reported failure.
func TranslateAudit(res domain.ProcessResult) domain.AuditResult {
	out := domain.AuditResult{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
	}
	if res.ExitCode != 0 {
		out.VulnerabilitiesFound = CountVulnerabilities(out.Stdout)
	}
	return out
}
