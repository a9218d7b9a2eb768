package goals

import (
	"context"
	"fmt"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/rules"
)

// FmtOptions are the explicit inputs of the fmt goal.
type FmtOptions struct {
	Baseline config.Baseline
	Tool     domain.ToolSpec
	Base     domain.InvocationConfig
}

// Fmt runs ruff format and writes rewritten files back into the
// workspace. Formatting never gates: the goal always exits 0.
func Fmt(ctx context.Context, env Env, opts FmtOptions, targets []domain.Target) (*domain.GoalResult, error) {
	const goal = domain.GoalFmt
	if !opts.Baseline.Enabled {
		return domain.ShortCircuit(goal, MsgDisabled), nil
	}
	applicable := domain.ApplicableTargets(targets, goal)
	if len(applicable) == 0 {
		return domain.ShortCircuit(goal, MsgNoTargets), nil
	}

	result := domain.NewGoalResult(goal)
	parts := domain.PartitionTargets(goal, applicable, opts.Base)
	tool := opts.Tool
	var changed []domain.FileEntry
	ran, err := env.runPartitions(ctx, partitionRun{
		goal: goal,
		tool: &tool,
		capture: func(p domain.Partition) (domain.Snapshot, error) {
			return captureTargets(env.Store, p.Targets, sourcesField, opts.Baseline.ExcludePatterns)
		},
		argv: func(exe string, p domain.Partition, files []string) []string {
			return rules.FmtArgv(exe, p.Config, files)
		},
		env:     ruffEnv,
		outputs: true,
		onResult: func(p domain.Partition, sources domain.Snapshot, res domain.ProcessResult) {
			fr := rules.TranslateFmt(sources, res)
			printOutput(env.Console, res)
			result.AppendOutput(fr.Stdout, fr.Stderr)
			result.Metadata[domain.MetaFiles] += sources.Len()
			if fr.ExitCode != 0 {
				env.Logger.Warn("ruff format reported errors", "exit_code", fr.ExitCode, "targets", p.Names())
			}
			env.Logger.Info("format partition", "targets", p.Names(), "summary", fr.Summary())
			for _, path := range fr.Changed {
				if e, ok := fr.Output.Lookup(path); ok {
					changed = append(changed, e)
				}
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

	if len(changed) > 0 {
		if err := env.Store.Write(domain.NewSnapshotUnchecked(changed), ""); err != nil {
			return nil, err
		}
	}
	result.Metadata[domain.MetaFilesChanged] = len(changed)

	if len(changed) > 0 {
		env.Console.Success(fmt.Sprintf("Formatted %d target(s)", len(applicable)))
	} else {
		env.Console.Success(fmt.Sprintf("%d target(s) already formatted", len(applicable)))
	}
	return result, nil
}
