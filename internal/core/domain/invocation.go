// internal/core/domain/invocation.go
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"
)

// PerFileIgnore suppresses rules for files matching Pattern.
type PerFileIgnore struct {
	Pattern string
	Rules   []string
}

// InvocationConfig is the effective option set for one tool run, after
// per-target overrides have been applied to the global configuration.
// Values are treated as immutable once built.
type InvocationConfig struct {
	// TargetVersion is the dotted Python version, e.g. "3.11".
	TargetVersion string
	LineLength    int
	Select        []string
	Ignore        []string
	Strict        bool
	OutputFormat  OutputFormat

	QuoteStyle        string
	IndentStyle       string
	PerFileIgnores    []PerFileIgnore
	CoverageThreshold int
}

// PyTag renders TargetVersion as ruff expects it ("3.11" -> "py311").
func (c InvocationConfig) PyTag() string {
	return "py" + strings.ReplaceAll(c.TargetVersion, ".", "")
}

// Key is a stable hash of every field. Two configs with equal keys build
// identical command lines.
func (c InvocationConfig) Key() string {
	h := sha256.New()
	writeField(h, []byte(c.TargetVersion))
	writeField(h, []byte(strconv.Itoa(c.LineLength)))
	writeList(h, c.Select)
	writeList(h, c.Ignore)
	writeField(h, []byte(strconv.FormatBool(c.Strict)))
	writeField(h, []byte(c.OutputFormat))
	writeField(h, []byte(c.QuoteStyle))
	writeField(h, []byte(c.IndentStyle))
	writeUint(h, uint64(len(c.PerFileIgnores)))
	for _, p := range c.PerFileIgnores {
		writeField(h, []byte(p.Pattern))
		writeList(h, p.Rules)
	}
	writeField(h, []byte(strconv.Itoa(c.CoverageThreshold)))
	return hex.EncodeToString(h.Sum(nil))
}

func writeList(h hash.Hash, items []string) {
	writeUint(h, uint64(len(items)))
	for _, s := range items {
		writeField(h, []byte(s))
	}
}
