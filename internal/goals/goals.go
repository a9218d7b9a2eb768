// Package goals implements the lint, fmt, typecheck, test and audit goals
// and the dispatch table the CLI uses to reach them.
package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/platform/registry"
	"pybaseline/internal/platform/ui"
)

// GoalAll runs every gating goal in order.
const GoalAll domain.Goal = "all"

// Short-circuit messages.
const (
	MsgDisabled      = "Python baseline is disabled."
	MsgAuditDisabled = "Security audit is disabled."
	MsgNoTargets     = "No " + domain.TargetKind + " targets found."
	MsgRuffSkipped   = "Ruff lint is skipped."
)

func msgNoFiles(goal domain.Goal) string {
	return "No files to " + goal.Verb()
}

// Descriptor names a goal and its one-line help.
type Descriptor struct {
	Name string
	Help string
}

// Catalog lists the goals in the order the CLI shows them.
var Catalog = []Descriptor{
	{Name: string(domain.GoalLint), Help: "Lint Python sources with Ruff"},
	{Name: string(domain.GoalFmt), Help: "Format Python sources with Ruff"},
	{Name: string(domain.GoalTypecheck), Help: "Type check Python sources with ty"},
	{Name: string(domain.GoalTest), Help: "Run pytest with a coverage gate"},
	{Name: string(domain.GoalAudit), Help: "Audit the lock file with uv"},
	{Name: string(GoalAll), Help: "Run lint, typecheck, test and audit"},
}

func helpFor(name string) string {
	for _, d := range Catalog {
		if d.Name == name {
			return d.Help
		}
	}
	return ""
}

// Env carries the collaborators shared by all goals.
type Env struct {
	Fetcher  ports.Fetcher
	Store    ports.SourceStore
	Executor ports.Executor
	Console  ui.Console
	Logger   logx.Logger
	Platform domain.Platform
	// Timeout bounds each tool process; zero means no limit.
	Timeout time.Duration
	// LookPath resolves executables expected on PATH, such as pytest.
	LookPath func(name string) (string, error)
}

// Handler runs one goal.
type Handler func(ctx context.Context) (*domain.GoalResult, error)

// Registry maps goal names to handlers.
type Registry = registry.Registry[Handler]

// NewRegistry validates the goal-level configuration and binds every goal
// to its explicit options. Configuration errors surface here, before any
// tool is fetched or run.
func NewRegistry(cfg config.Config, env Env) (*Registry, error) {
	targets, err := cfg.DomainTargets()
	if err != nil {
		return nil, err
	}

	lintBase, err := cfg.LintConfig()
	if err != nil {
		return nil, err
	}
	typeBase, err := cfg.TypecheckConfig()
	if err != nil {
		return nil, err
	}
	auditFormat, err := cfg.AuditFormat()
	if err != nil {
		return nil, err
	}
	ruff, err := cfg.ToolSpec(config.ToolRuff)
	if err != nil {
		return nil, err
	}
	ty, err := cfg.ToolSpec(config.ToolTy)
	if err != nil {
		return nil, err
	}
	uv, err := cfg.ToolSpec(config.ToolUV)
	if err != nil {
		return nil, err
	}

	reg := registry.New[Handler]("goal", env.Logger)
	reg.MustRegister(string(domain.GoalLint), helpFor(string(domain.GoalLint)), func(ctx context.Context) (*domain.GoalResult, error) {
		return Lint(ctx, env, LintOptions{Baseline: cfg.Baseline, Ruff: cfg.Ruff, Tool: ruff, Base: lintBase}, targets)
	})
	reg.MustRegister(string(domain.GoalFmt), helpFor(string(domain.GoalFmt)), func(ctx context.Context) (*domain.GoalResult, error) {
		return Fmt(ctx, env, FmtOptions{Baseline: cfg.Baseline, Tool: ruff, Base: cfg.FmtConfig()}, targets)
	})
	reg.MustRegister(string(domain.GoalTypecheck), helpFor(string(domain.GoalTypecheck)), func(ctx context.Context) (*domain.GoalResult, error) {
		return Typecheck(ctx, env, TypecheckOptions{Baseline: cfg.Baseline, Ty: cfg.Ty, Tool: ty, Base: typeBase}, targets)
	})
	reg.MustRegister(string(domain.GoalTest), helpFor(string(domain.GoalTest)), func(ctx context.Context) (*domain.GoalResult, error) {
		return Test(ctx, env, TestOptions{Baseline: cfg.Baseline, Pytest: cfg.Pytest, Base: cfg.TestConfig()}, targets)
	})
	reg.MustRegister(string(domain.GoalAudit), helpFor(string(domain.GoalAudit)), func(ctx context.Context) (*domain.GoalResult, error) {
		return Audit(ctx, env, AuditOptions{Baseline: cfg.Baseline, UV: cfg.UV, Tool: uv, Format: auditFormat}, targets)
	})
	reg.MustRegister(string(GoalAll), helpFor(string(GoalAll)), func(ctx context.Context) (*domain.GoalResult, error) {
		return All(ctx, reg, env.Console)
	})
	return reg, nil
}

// Run dispatches name and reports short-circuit messages on the console.
func Run(ctx context.Context, reg *Registry, console ui.Console, name string) (*domain.GoalResult, error) {
	handler, err := reg.Lookup(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown goal %q (available: %s)", name, strings.Join(reg.List(), ", "))
	}
	res, err := handler(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	if res.Skipped() {
		console.Skipped(res.Message)
	}
	return res, nil
}

// All runs lint, typecheck, test and audit in order. Formatting is left
// out because it rewrites files. The exit code is the first non-zero one.
func All(ctx context.Context, reg *Registry, console ui.Console) (*domain.GoalResult, error) {
	out := domain.NewGoalResult(GoalAll)
	for _, goal := range []domain.Goal{domain.GoalLint, domain.GoalTypecheck, domain.GoalTest, domain.GoalAudit} {
		res, err := Run(ctx, reg, console, string(goal))
		if err != nil {
			return nil, err
		}
		out.AppendOutput(res.Stdout, res.Stderr)
		out.Metadata[string(goal)] = res.ExitCode
		if out.ExitCode == 0 && res.ExitCode != 0 {
			out.ExitCode = res.ExitCode
		}
	}
	if out.ExitCode != 0 {
		console.Failure(fmt.Sprintf("Baseline failed with exit code %d", out.ExitCode))
	} else {
		console.Success("Baseline passed")
	}
	return out, nil
}

// printOutput passes tool output through verbatim.
func printOutput(console ui.Console, res domain.ProcessResult) {
	if len(res.Stdout) > 0 {
		console.Print(string(res.Stdout))
	}
	if len(res.Stderr) > 0 {
		console.PrintErr(string(res.Stderr))
	}
}
