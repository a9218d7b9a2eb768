// Package output writes machine-readable goal reports.
package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/errors"
)

// Report is the JSON document written for one goal invocation.
type Report struct {
	Goal       string         `json:"goal"`
	ExitCode   int            `json:"exit_code"`
	Passed     bool           `json:"passed"`
	Message    string         `json:"message,omitempty"`
	Metadata   map[string]int `json:"metadata,omitempty"`
	Goals      []string       `json:"goals,omitempty"`
	Stdout     string         `json:"stdout,omitempty"`
	Stderr     string         `json:"stderr,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
	Version    string         `json:"version"`
}

const reportMode = 0o644

var subGoals = []domain.Goal{
	domain.GoalLint, domain.GoalFmt, domain.GoalTypecheck, domain.GoalTest, domain.GoalAudit,
}

// NewReport summarizes res. For the aggregate goal, Goals lists the
// sub-goals recorded in its metadata.
func NewReport(res *domain.GoalResult, elapsed time.Duration, version string) Report {
	r := Report{
		Goal:       string(res.Goal),
		ExitCode:   res.ExitCode,
		Passed:     res.ExitCode == 0,
		Message:    res.Message,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
		Version:    version,
	}
	if len(res.Metadata) > 0 {
		r.Metadata = res.Metadata
	}
	for _, g := range subGoals {
		if _, ok := res.Metadata[string(g)]; ok {
			r.Goals = append(r.Goals, string(g))
		}
	}
	return r
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrapf(err, "encode report")
	}
	return nil
}

// WriteFile writes r to path through a temp file and rename, creating
// parent directories.
func WriteFile(path string, r Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create report directory")
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return errors.Wrapf(err, "create report file")
	}
	defer os.Remove(tmp.Name())

	if err := WriteJSON(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write report")
	}
	if err := os.Chmod(tmp.Name(), reportMode); err != nil {
		return errors.Wrapf(err, "chmod report")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "install report")
	}
	return nil
}
