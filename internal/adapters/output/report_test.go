package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pybaseline/internal/core/domain"
)

func TestNewReportSingleGoal(t *testing.T) {
	res := domain.NewGoalResult(domain.GoalAudit)
	res.ExitCode = 1
	res.Stdout = "Found 2 known vulnerabilities\n"
	res.Metadata[domain.MetaVulnerabilities] = 2

	r := NewReport(res, 1500*time.Millisecond, "1.2.3")
	assert.Equal(t, "audit", r.Goal)
	assert.False(t, r.Passed)
	assert.Equal(t, int64(1500), r.DurationMS)
	assert.Equal(t, 2, r.Metadata[domain.MetaVulnerabilities])
	assert.Empty(t, r.Goals)
	assert.Equal(t, "1.2.3", r.Version)
}

func TestNewReportAggregate(t *testing.T) {
	res := domain.NewGoalResult("all")
	for _, g := range []domain.Goal{domain.GoalAudit, domain.GoalLint, domain.GoalTest, domain.GoalTypecheck} {
		res.Metadata[string(g)] = 0
	}

	r := NewReport(res, 0, "dev")
	assert.True(t, r.Passed)
	assert.Equal(t, []string{"lint", "typecheck", "test", "audit"}, r.Goals)
}

func TestShortCircuitReportOmitsEmptyFields(t *testing.T) {
	r := NewReport(domain.ShortCircuit(domain.GoalLint, "Python baseline is disabled."), 0, "dev")

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Python baseline is disabled.", decoded["message"])
	assert.Equal(t, true, decoded["passed"])
	assert.NotContains(t, decoded, "metadata")
	assert.NotContains(t, decoded, "stdout")
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "lint.json")
	res := domain.NewGoalResult(domain.GoalLint)

	require.NoError(t, WriteFile(path, NewReport(res, time.Second, "dev")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "lint", decoded.Goal)
	assert.Equal(t, int64(1000), decoded.DurationMS)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteFile(path, NewReport(domain.NewGoalResult(domain.GoalTest), 0, "dev")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
