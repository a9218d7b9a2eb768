package goals

import (
	"context"
	"fmt"
	"strings"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/ui"
	"pybaseline/internal/rules"
)

// LintOptions are the explicit inputs of the lint goal.
type LintOptions struct {
	Baseline config.Baseline
	Ruff     config.Ruff
	Tool     domain.ToolSpec
	Base     domain.InvocationConfig
}

// ruffEnv disables ruff's on-disk cache; sandboxes are thrown away.
var ruffEnv = map[string]string{"RUFF_NO_CACHE": "true"}

// Lint runs ruff check once per partition of applicable targets.
func Lint(ctx context.Context, env Env, opts LintOptions, targets []domain.Target) (*domain.GoalResult, error) {
	const goal = domain.GoalLint
	if !opts.Baseline.Enabled {
		return domain.ShortCircuit(goal, MsgDisabled), nil
	}
	if opts.Ruff.Skip {
		return domain.ShortCircuit(goal, MsgRuffSkipped), nil
	}
	applicable := domain.ApplicableTargets(targets, goal)
	if len(applicable) == 0 {
		return domain.ShortCircuit(goal, MsgNoTargets), nil
	}

	env.Console.Section("Running Ruff linter...")
	env.Console.Print("  Target Python version: " + opts.Base.TargetVersion)
	env.Console.Print(fmt.Sprintf("  Line length: %d", opts.Base.LineLength))
	if len(opts.Base.Select) > 0 {
		env.Console.Print("  Rules: " + strings.Join(opts.Base.Select, ", "))
	}
	env.Console.Print("")

	result := domain.NewGoalResult(goal)
	parts := domain.PartitionTargets(goal, applicable, opts.Base)
	tool := opts.Tool
	ran, err := env.runPartitions(ctx, partitionRun{
		goal: goal,
		tool: &tool,
		capture: func(p domain.Partition) (domain.Snapshot, error) {
			return captureTargets(env.Store, p.Targets, sourcesField, opts.Baseline.ExcludePatterns)
		},
		argv: func(exe string, p domain.Partition, files []string) []string {
			return rules.LintArgv(exe, p.Config, files)
		},
		env: ruffEnv,
		onResult: func(p domain.Partition, sources domain.Snapshot, res domain.ProcessResult) {
			lint := rules.TranslateLint(res)
			printOutput(env.Console, res)
			result.AppendOutput(lint.Stdout, lint.Stderr)
			result.Metadata[domain.MetaFiles] += sources.Len()
			if !lint.Passed() {
				result.ExitCode = lint.ExitCode
			}
		},
	}, parts)
	if err != nil {
		return nil, err
	}
	if ran == 0 {
		return domain.ShortCircuit(goal, msgNoFiles(goal)), nil
	}
	result.Metadata[domain.MetaPartitions] = ran

	if result.ExitCode == 0 {
		env.Console.Success(fmt.Sprintf("Linted %s cleanly", ui.Plural(len(applicable), "target")))
	} else {
		env.Console.Failure(fmt.Sprintf("Linting failed with exit code %d", result.ExitCode))
	}
	return result, nil
}
