package goals

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
)

// partitionRun describes how one goal turns a partition into a process.
type partitionRun struct {
	goal domain.Goal
	// tool is downloaded per partition; nil means exe is used as is.
	tool *domain.ToolSpec
	exe  string
	// lookup resolves exe the first time a partition has files.
	lookup  func() (string, error)
	capture func(p domain.Partition) (domain.Snapshot, error)
	// support adds files the tool reads but is not pointed at.
	support func(p domain.Partition) (domain.Snapshot, error)
	argv    func(exe string, p domain.Partition, files []string) []string
	env     map[string]string
	// outputs re-captures the source files after the run.
	outputs bool
	// onResult consumes one partition's result.
	onResult func(p domain.Partition, sources domain.Snapshot, res domain.ProcessResult)
}

// runPartitions executes one process per partition in order and returns
// how many partitions had files to work on.
func (env Env) runPartitions(ctx context.Context, run partitionRun, parts []domain.Partition) (int, error) {
	ran := 0
	for _, p := range parts {
		in, err := env.prepare(ctx, run, p)
		if err != nil {
			return ran, err
		}
		tool, sources := in.tool, in.sources
		if sources.IsEmpty() {
			env.Logger.Debug("partition has no files", "goal", run.goal, "targets", p.Names())
			continue
		}

		input, err := domain.MergeSnapshots(tool.Snapshot, sources, in.support)
		if err != nil {
			return ran, err
		}
		if run.exe == "" && run.lookup != nil {
			if run.exe, err = run.lookup(); err != nil {
				return ran, err
			}
		}
		exe := run.exe
		if run.tool != nil {
			exe = tool.Exe
		}

		files := sources.Files()
		proc := domain.Process{
			Argv:        run.argv(exe, p, files),
			Input:       input,
			Env:         run.env,
			Description: fmt.Sprintf("Run %s on %d files", run.goal, len(files)),
			Timeout:     env.Timeout,
		}
		if run.outputs {
			proc.OutputFiles = files
		}

		res, err := env.Executor.Execute(ctx, proc)
		if err != nil {
			return ran, err
		}
		ran++
		run.onResult(p, sources, res)
	}
	return ran, nil
}

type prepared struct {
	tool    ports.DownloadedTool
	sources domain.Snapshot
	support domain.Snapshot
}

// prepare downloads the tool and captures the partition's files
// concurrently. Each branch owns its own result.
func (env Env) prepare(ctx context.Context, run partitionRun, p domain.Partition) (prepared, error) {
	var (
		tool             ports.DownloadedTool
		sources, support domain.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	if run.tool != nil {
		spec := *run.tool
		g.Go(func() error {
			t, err := env.Fetcher.Fetch(gctx, spec, env.Platform)
			if err != nil {
				return err
			}
			tool = t
			return nil
		})
	}
	g.Go(func() error {
		s, err := run.capture(p)
		if err != nil {
			return err
		}
		sources = s
		return nil
	})
	if run.support != nil {
		g.Go(func() error {
			s, err := run.support(p)
			if err != nil {
				return err
			}
			support = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return prepared{}, err
	}
	return prepared{tool: tool, sources: sources, support: support}, nil
}

// captureTargets snapshots field(t) for every target and merges the result.
func captureTargets(store ports.SourceStore, targets []domain.Target, field func(domain.Target) []string, exclude []string) (domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, 0, len(targets))
	for _, t := range targets {
		s, err := store.Capture(t.Root, field(t), exclude)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snaps = append(snaps, s)
	}
	return domain.MergeSnapshots(snaps...)
}

func sourcesField(t domain.Target) []string     { return t.Sources }
func testSourcesField(t domain.Target) []string { return t.TestSources }
