// internal/platform/config/flags.go
package config

import (
	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Only flags the user actually set
// are applied on top of the file and environment layers.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath string
	Workspace  string
	LogLevel   string
	TimeoutS   int

	Disabled          bool
	PythonVersion     string
	LineLength        int
	CoverageThreshold int
	Strict            bool
	OutputFormat      string
	Select            []string
	Ignore            []string
	SrcRoots          []string
	TestRoots         []string
	LockFile          string
	IgnoreVulns       []string
	NoAudit           bool
	CacheDir          string
}

// BindFlags registers the global flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := DefaultConfig()

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Path to pybaseline.yaml")
	fs.StringVarP(&f.Workspace, "workspace", "C", "", "Workspace root (default: current directory)")
	fs.StringVar(&f.LogLevel, "log-level", d.LogLevel, "Log level: debug, info, warn, error")
	fs.IntVarP(&f.TimeoutS, "timeout", "T", d.TimeoutS, "Per-process timeout in seconds, 0=no timeout")

	fs.BoolVar(&f.Disabled, "disable", false, "Disable the baseline (every goal becomes a no-op)")
	fs.StringVar(&f.PythonVersion, "python-version", d.Baseline.PythonVersion, "Target Python version")
	fs.IntVar(&f.LineLength, "line-length", d.Baseline.LineLength, "Maximum line length")
	fs.IntVar(&f.CoverageThreshold, "coverage-threshold", d.Baseline.CoverageThreshold, "Minimum coverage percentage")
	fs.BoolVar(&f.Strict, "strict", d.Baseline.StrictMode, "Strict type checking")
	fs.StringVarP(&f.OutputFormat, "output-format", "f", d.Ruff.OutputFormat, "Report format for every tool: text, json, github")
	fs.StringSliceVar(&f.Select, "select", nil, "Ruff rule codes to enable (replaces configured list)")
	fs.StringSliceVar(&f.Ignore, "ignore", nil, "Ruff rule codes to ignore (replaces configured list)")
	fs.StringSliceVar(&f.SrcRoots, "src-roots", nil, "Source roots")
	fs.StringSliceVar(&f.TestRoots, "test-roots", nil, "Test roots")
	fs.StringVar(&f.LockFile, "lock-file", d.UV.LockFile, "Lock file audited by uv")
	fs.StringSliceVar(&f.IgnoreVulns, "ignore-vuln", nil, "Vulnerability IDs to ignore during audit")
	fs.BoolVar(&f.NoAudit, "no-audit", false, "Disable the security audit")
	fs.StringVar(&f.CacheDir, "cache-dir", "", "Tool download cache directory")

	return f
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// apply copies every explicitly set flag into cfg.
func (f *Flags) apply(cfg *Config) {
	if f.changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if f.changed("timeout") {
		cfg.TimeoutS = f.TimeoutS
	}
	if f.changed("disable") && f.Disabled {
		cfg.Baseline.Enabled = false
	}
	if f.changed("python-version") {
		cfg.Baseline.PythonVersion = f.PythonVersion
	}
	if f.changed("line-length") {
		cfg.Baseline.LineLength = f.LineLength
	}
	if f.changed("coverage-threshold") {
		cfg.Baseline.CoverageThreshold = f.CoverageThreshold
	}
	if f.changed("strict") {
		cfg.Baseline.StrictMode = f.Strict
		cfg.Ty.Strict = f.Strict
	}
	if f.changed("output-format") {
		cfg.SetOutputFormat(f.OutputFormat)
	}
	if f.changed("select") {
		cfg.Ruff.Select = f.Select
	}
	if f.changed("ignore") {
		cfg.Ruff.Ignore = f.Ignore
	}
	if f.changed("src-roots") {
		cfg.Baseline.SrcRoots = f.SrcRoots
	}
	if f.changed("test-roots") {
		cfg.Baseline.TestRoots = f.TestRoots
	}
	if f.changed("lock-file") {
		cfg.UV.LockFile = f.LockFile
	}
	if f.changed("ignore-vuln") {
		cfg.UV.AuditIgnoreVulns = f.IgnoreVulns
	}
	if f.changed("no-audit") && f.NoAudit {
		cfg.UV.AuditEnabled = false
	}
	if f.changed("cache-dir") {
		cfg.Tools.CacheDir = f.CacheDir
	}
}
