package goals

import (
	"context"
	"fmt"
	"path"
	"strings"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/rules"
)

// TypecheckOptions are the explicit inputs of the typecheck goal.
type TypecheckOptions struct {
	Baseline config.Baseline
	Ty       config.Ty
	Tool     domain.ToolSpec
	Base     domain.InvocationConfig
}

// Typecheck runs ty check once per partition of applicable targets.
func Typecheck(ctx context.Context, env Env, opts TypecheckOptions, targets []domain.Target) (*domain.GoalResult, error) {
	const goal = domain.GoalTypecheck
	if !opts.Baseline.Enabled {
		return domain.ShortCircuit(goal, MsgDisabled), nil
	}
	applicable := domain.ApplicableTargets(targets, goal)
	if len(applicable) == 0 {
		return domain.ShortCircuit(goal, MsgNoTargets), nil
	}

	env.Console.Section("Running ty type checker...")
	env.Console.Print("  Python version: " + opts.Base.TargetVersion)
	if opts.Base.Strict {
		env.Console.Print("  Strict mode: on")
	}
	env.Console.Print("")

	exclude := append(append([]string(nil), opts.Baseline.ExcludePatterns...), opts.Ty.Exclude...)
	tyOpts := rules.TypecheckOptions{
		ReportMissingImports: opts.Ty.ReportMissingImports,
		StubPath:             opts.Ty.StubPath,
	}

	result := domain.NewGoalResult(goal)
	parts := domain.PartitionTargets(goal, applicable, opts.Base)
	tool := opts.Tool
	ran, err := env.runPartitions(ctx, partitionRun{
		goal: goal,
		tool: &tool,
		capture: func(p domain.Partition) (domain.Snapshot, error) {
			snap, err := captureTargets(env.Store, p.Targets, sourcesField, exclude)
			if err != nil {
				return domain.Snapshot{}, err
			}
			return filterIncluded(snap, p.Targets, opts.Ty.Include), nil
		},
		support: func(p domain.Partition) (domain.Snapshot, error) {
			if opts.Ty.StubPath == "" {
				return domain.Snapshot{}, nil
			}
			return env.Store.Capture(".", []string{path.Join(opts.Ty.StubPath, "**", "*.pyi")}, nil)
		},
		argv: func(exe string, p domain.Partition, files []string) []string {
			return rules.TypecheckArgv(exe, p.Config, tyOpts, files)
		},
		onResult: func(p domain.Partition, sources domain.Snapshot, res domain.ProcessResult) {
			check := rules.TranslateTypecheck(res)
			printOutput(env.Console, res)
			result.AppendOutput(check.Stdout, check.Stderr)
			result.Metadata[domain.MetaFiles] += sources.Len()
			if !check.Passed() {
				result.ExitCode = check.ExitCode
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
		env.Console.Success(fmt.Sprintf("Type checked %d target(s) successfully", len(applicable)))
	} else {
		env.Console.Failure(fmt.Sprintf("Type checking failed with exit code %d", result.ExitCode))
	}
	return result, nil
}

// filterIncluded keeps files that live under one of the include
// directories of their target. An empty include list keeps everything.
func filterIncluded(snap domain.Snapshot, targets []domain.Target, include []string) domain.Snapshot {
	if len(include) == 0 {
		return snap
	}
	var prefixes []string
	for _, t := range targets {
		for _, dir := range include {
			prefixes = append(prefixes, path.Join(t.Root, dir)+"/")
		}
	}
	var kept []domain.FileEntry
	for _, e := range snap.Entries() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(e.Path, prefix) {
				kept = append(kept, e)
				break
			}
		}
	}
	return domain.NewSnapshotUnchecked(kept)
}
