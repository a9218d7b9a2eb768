// internal/core/domain/process.go
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// Process is a request to run one external command over an input snapshot.
type Process struct {
	// Argv[0] is the executable, relative to the sandbox root when it lives
	// inside Input, otherwise an absolute path or a PATH lookup name.
	Argv  []string
	Input Snapshot
	// Env is the complete environment; nothing is inherited except PATH.
	Env map[string]string
	// OutputFiles are re-captured from the sandbox after the run.
	OutputFiles []string
	Description string
	Timeout     time.Duration
}

// Key identifies a process by argv, input digest, env and declared
// outputs. Description and Timeout do not participate.
func (p Process) Key() string {
	h := sha256.New()
	writeList(h, p.Argv)
	writeField(h, []byte(p.Input.Digest()))
	keys := sortedKeys(p.Env)
	writeUint(h, uint64(len(keys)))
	for _, k := range keys {
		writeField(h, []byte(k))
		writeField(h, []byte(p.Env[k]))
	}
	writeList(h, p.OutputFiles)
	return hex.EncodeToString(h.Sum(nil))
}

// ProcessResult is the outcome of one execution. A non-zero ExitCode is
// data, not an error.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Output holds the declared output files; empty when none were declared.
	Output   Snapshot
	Duration time.Duration
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
