package goals

import (
	"bytes"
	"context"
	"path"
	"sync"
	"sync/atomic"
	"testing"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/platform/ui"
	"pybaseline/internal/snapshot"
	"pybaseline/internal/testutil"
)

// fakeFetcher hands out a one-file release without touching the network.
type fakeFetcher struct {
	store *snapshot.Store
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, spec domain.ToolSpec, platform domain.Platform) (ports.DownloadedTool, error) {
	f.calls.Add(1)
	if _, _, err := spec.Locate(platform); err != nil {
		return ports.DownloadedTool{}, err
	}
	exe := spec.Name + "-bin/" + spec.Name
	entry := f.store.Put(exe, []byte("#!/bin/sh\n# "+spec.String()+"\n"), true)
	return ports.DownloadedTool{
		Spec:     spec,
		Snapshot: domain.NewSnapshotUnchecked([]domain.FileEntry{entry}),
		Exe:      exe,
	}, nil
}

// recordingExecutor records every process and answers per tool.
type recordingExecutor struct {
	mu      sync.Mutex
	procs   []domain.Process
	respond map[string]func(domain.Process) domain.ProcessResult
}

func (r *recordingExecutor) Execute(_ context.Context, proc domain.Process) (domain.ProcessResult, error) {
	r.mu.Lock()
	r.procs = append(r.procs, proc)
	r.mu.Unlock()
	if fn, ok := r.respond[path.Base(proc.Argv[0])]; ok {
		return fn(proc), nil
	}
	return domain.ProcessResult{}, nil
}

func (r *recordingExecutor) processes() []domain.Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Process(nil), r.procs...)
}

func exitWith(code int, stdout string) func(domain.Process) domain.ProcessResult {
	return func(domain.Process) domain.ProcessResult {
		return domain.ProcessResult{ExitCode: code, Stdout: []byte(stdout)}
	}
}

type harness struct {
	ws      string
	store   *snapshot.Store
	fetcher *fakeFetcher
	exec    *recordingExecutor
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	env     Env
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	ws := t.TempDir()
	testutil.WriteTree(t, ws, files)

	store := snapshot.NewStore(ws, logx.Discard())
	h := &harness{
		ws:      ws,
		store:   store,
		fetcher: &fakeFetcher{store: store},
		exec:    &recordingExecutor{respond: map[string]func(domain.Process) domain.ProcessResult{}},
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	h.env = Env{
		Fetcher:  h.fetcher,
		Store:    store,
		Executor: h.exec,
		Console:  ui.NewRawConsole(h.stdout, h.stderr),
		Logger:   logx.Discard(),
		Platform: domain.PlatformLinuxX86_64,
		LookPath: func(name string) (string, error) {
			if name != "pytest" {
				return "", errors.Wrapf(errors.ErrToolNotFound, "%s", name)
			}
			return "/opt/venv/bin/pytest", nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, cfg config.Config, goal string) *domain.GoalResult {
	t.Helper()
	reg, err := NewRegistry(cfg, h.env)
	testutil.AssertNoError(t, err, "registry")
	res, err := Run(context.Background(), reg, h.env.Console, goal)
	testutil.AssertNoError(t, err, "run "+goal)
	return res
}

func (h *harness) runErr(cfg config.Config, goal string) error {
	reg, err := NewRegistry(cfg, h.env)
	if err != nil {
		return err
	}
	_, err = Run(context.Background(), reg, h.env.Console, goal)
	return err
}

func projectConfig(targets ...config.TargetConfig) config.Config {
	cfg := config.DefaultConfig()
	cfg.Targets = targets
	return cfg
}

func intPtr(v int) *int { return &v }

var singleProject = testutil.PythonProject()
