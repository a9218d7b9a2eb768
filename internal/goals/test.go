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

// TestOptions are the explicit inputs of the test goal.
type TestOptions struct {
	Baseline config.Baseline
	Pytest   config.Pytest
	Base     domain.InvocationConfig
}

// projectConfigFiles are read by pytest and pytest-cov when present.
var projectConfigFiles = []string{"pyproject.toml", "pytest.ini", "setup.cfg", "tox.ini", ".coveragerc", "conftest.py"}

var pytestEnv = map[string]string{"PYTHONDONTWRITEBYTECODE": "1"}

// Test runs pytest with coverage over the configured source roots. The
// coverage gate is pytest-cov's; its exit code is the goal's.
func Test(ctx context.Context, env Env, opts TestOptions, targets []domain.Target) (*domain.GoalResult, error) {
	const goal = domain.GoalTest
	if !opts.Baseline.Enabled {
		return domain.ShortCircuit(goal, MsgDisabled), nil
	}
	applicable := domain.ApplicableTargets(targets, goal)
	if len(applicable) == 0 {
		return domain.ShortCircuit(goal, MsgNoTargets), nil
	}

	env.Console.Section("Running pytest with coverage...")
	env.Console.Print("  Source roots: " + strings.Join(opts.Baseline.SrcRoots, ", "))
	env.Console.Print("  Test roots: " + strings.Join(opts.Baseline.TestRoots, ", "))
	env.Console.Print(fmt.Sprintf("  Coverage threshold: %d%%", opts.Base.CoverageThreshold))
	env.Console.Print("")

	result := domain.NewGoalResult(goal)
	parts := domain.PartitionTargets(goal, applicable, opts.Base)
	ran, err := env.runPartitions(ctx, partitionRun{
		goal: goal,
		lookup: func() (string, error) {
			return env.LookPath(opts.Pytest.Executable)
		},
		capture: func(p domain.Partition) (domain.Snapshot, error) {
			return captureTargets(env.Store, p.Targets, testSourcesField, opts.Baseline.ExcludePatterns)
		},
		support: func(p domain.Partition) (domain.Snapshot, error) {
			code, err := captureTargets(env.Store, p.Targets, sourcesField, opts.Baseline.ExcludePatterns)
			if err != nil {
				return domain.Snapshot{}, err
			}
			cfgFiles, err := captureTargets(env.Store, p.Targets, func(domain.Target) []string { return projectConfigFiles }, nil)
			if err != nil {
				return domain.Snapshot{}, err
			}
			return domain.MergeSnapshots(code, cfgFiles)
		},
		argv: func(exe string, p domain.Partition, files []string) []string {
			return rules.TestArgv(exe, p.Config, coverageRoots(p.Targets, opts.Baseline.SrcRoots), files)
		},
		env: pytestEnv,
		onResult: func(p domain.Partition, sources domain.Snapshot, res domain.ProcessResult) {
			tr := rules.TranslateTest(p.Config, res)
			printOutput(env.Console, res)
			result.AppendOutput(tr.Stdout, tr.Stderr)
			result.Metadata[domain.MetaFiles] += sources.Len()
			if !tr.Passed() {
				result.ExitCode = tr.ExitCode
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
		env.Console.Success(fmt.Sprintf("Tests passed for %d target(s)", len(applicable)))
	} else {
		env.Console.Failure(fmt.Sprintf("Tests failed with exit code %d", result.ExitCode))
	}
	return result, nil
}

// coverageRoots resolves the source roots against every target root,
// keeping first-seen order.
func coverageRoots(targets []domain.Target, srcRoots []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range targets {
		for _, root := range srcRoots {
			r := path.Join(t.Root, root)
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
