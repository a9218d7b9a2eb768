package goals

import (
	"context"
	"fmt"
	"path"
	"strings"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/rules"
)

// AuditOptions are the explicit inputs of the audit goal.
type AuditOptions struct {
	Baseline config.Baseline
	UV       config.UV
	Tool     domain.ToolSpec
	Format   domain.OutputFormat
}

// Audit runs uv audit against the workspace lock file. There is a single
// lock per workspace, so targets only decide whether the goal applies.
func Audit(ctx context.Context, env Env, opts AuditOptions, targets []domain.Target) (*domain.GoalResult, error) {
	const goal = domain.GoalAudit
	if !opts.Baseline.Enabled {
		return domain.ShortCircuit(goal, MsgDisabled), nil
	}
	if !opts.UV.AuditEnabled {
		return domain.ShortCircuit(goal, MsgAuditDisabled), nil
	}
	if len(domain.ApplicableTargets(targets, goal)) == 0 {
		return domain.ShortCircuit(goal, MsgNoTargets), nil
	}

	env.Console.Section("Running uv security audit...")
	env.Console.Print("  Lock file: " + opts.UV.LockFile)
	if len(opts.UV.AuditIgnoreVulns) > 0 {
		env.Console.Print("  Ignoring: " + strings.Join(opts.UV.AuditIgnoreVulns, ", "))
	}
	env.Console.Print("")

	lockPath := path.Clean(opts.UV.LockFile)
	// A single workspace-wide partition: the lock file plus the project
	// manifest uv resolves it against.
	audited := domain.Partition{Targets: []domain.Target{domain.NewTarget("workspace")}}
	tool := opts.Tool
	var audit domain.AuditResult
	ran, err := env.runPartitions(ctx, partitionRun{
		goal: goal,
		tool: &tool,
		capture: func(domain.Partition) (domain.Snapshot, error) {
			lock, err := env.Store.Capture(".", []string{lockPath}, nil)
			if err != nil {
				return domain.Snapshot{}, err
			}
			if _, ok := lock.Lookup(lockPath); !ok && opts.UV.RequireLock {
				return domain.Snapshot{}, errors.Wrapf(errors.ErrLockFileMissing, "%s", lockPath)
			}
			return lock, nil
		},
		support: func(domain.Partition) (domain.Snapshot, error) {
			return env.Store.Capture(".", []string{"pyproject.toml"}, nil)
		},
		argv: func(exe string, _ domain.Partition, _ []string) []string {
			return rules.AuditArgv(exe, rules.AuditOptions{
				OutputFormat: opts.Format,
				IgnoreVulns:  opts.UV.AuditIgnoreVulns,
				ExtraArgs:    opts.UV.ExtraArgs,
			})
		},
		onResult: func(_ domain.Partition, _ domain.Snapshot, res domain.ProcessResult) {
			audit = rules.TranslateAudit(res)
			printOutput(env.Console, res)
		},
	}, []domain.Partition{audited})
	if err != nil {
		return nil, err
	}
	if ran == 0 {
		return domain.ShortCircuit(goal, msgNoFiles(goal)), nil
	}

	result := domain.NewGoalResult(goal)
	result.ExitCode = audit.ExitCode
	result.AppendOutput(audit.Stdout, audit.Stderr)
	result.Metadata[domain.MetaPartitions] = ran
	result.Metadata[domain.MetaVulnerabilities] = audit.VulnerabilitiesFound

	if audit.Passed() {
		env.Console.Print("\nNo vulnerabilities found.")
	} else {
		env.Console.PrintErr(fmt.Sprintf("\nFound %d vulnerabilities!", audit.VulnerabilitiesFound))
	}
	return result, nil
}
