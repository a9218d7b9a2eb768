// Package process runs external tools inside throwaway sandbox directories.
package process

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/snapshot"
)

// Runner materializes a process input into a fresh sandbox, runs the
// command there and captures its outputs.
type Runner struct {
	store   *snapshot.Store
	baseDir string
	keep    bool
	logger  logx.Logger
}

var _ ports.Executor = (*Runner)(nil)

// RunnerConfig configures sandbox placement.
type RunnerConfig struct {
	// BaseDir holds sandbox directories. Defaults to os.TempDir().
	BaseDir string
	// KeepSandboxes leaves sandboxes on disk for debugging.
	KeepSandboxes bool
}

// NewRunner creates a Runner that reads snapshot content from store.
func NewRunner(store *snapshot.Store, cfg RunnerConfig, logger logx.Logger) *Runner {
	if cfg.BaseDir == "" {
		cfg.BaseDir = os.TempDir()
	}
	return &Runner{
		store:   store,
		baseDir: cfg.BaseDir,
		keep:    cfg.KeepSandboxes,
		logger:  logger.With("component", "runner"),
	}
}

// Execute runs proc. The tool's exit status is reported in the result;
// errors are reserved for failures to set up or start the process.
func (r *Runner) Execute(ctx context.Context, proc domain.Process) (domain.ProcessResult, error) {
	if len(proc.Argv) == 0 {
		return domain.ProcessResult{}, errors.New("process has no argv")
	}
	if err := ctx.Err(); err != nil {
		return domain.ProcessResult{}, err
	}

	sandbox := filepath.Join(r.baseDir, "pybaseline-"+uuid.NewString())
	if err := os.MkdirAll(sandbox, 0o755); err != nil {
		return domain.ProcessResult{}, errors.Wrapf(err, "create sandbox")
	}
	if !r.keep {
		defer os.RemoveAll(sandbox)
	}

	if err := r.store.Materialize(proc.Input, sandbox); err != nil {
		return domain.ProcessResult{}, errors.Wrapf(err, "materialize input")
	}

	exe, err := r.resolve(proc, sandbox)
	if err != nil {
		return domain.ProcessResult{}, err
	}

	if proc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, proc.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, proc.Argv[1:]...)
	cmd.Dir = sandbox
	cmd.Env = environ(proc.Env)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("executing process",
		"description", proc.Description,
		"argv", proc.Argv,
		"files", proc.Input.Len(),
		"sandbox", sandbox,
	)

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return domain.ProcessResult{}, errors.Wrapf(errors.ErrToolNotFound, "start %s: %v", proc.Argv[0], runErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ProcessResult{}, errors.Wrapf(ctxErr, "%s", proc.Description)
		}
		exitCode = exitErr.ExitCode()
	}

	result := domain.ProcessResult{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}
	if len(proc.OutputFiles) > 0 {
		out, err := r.store.CaptureOutputs(sandbox, proc.OutputFiles)
		if err != nil {
			return domain.ProcessResult{}, err
		}
		result.Output = out
	}

	if stderr.Len() > 0 {
		r.logger.Debug("process stderr", "description", proc.Description, "output", stderr.String())
	}
	r.logger.Info("process finished",
		"description", proc.Description,
		"exit_code", exitCode,
		"duration", duration.String(),
	)
	return result, nil
}

// resolve finds argv[0]: inside the sandbox when the input carries it,
// otherwise on PATH.
func (r *Runner) resolve(proc domain.Process, sandbox string) (string, error) {
	name := proc.Argv[0]
	if _, ok := proc.Input.Lookup(name); ok {
		return filepath.Join(sandbox, filepath.FromSlash(name)), nil
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", errors.Wrapf(errors.ErrToolNotFound, "%s", name)
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(errors.ErrToolNotFound, "%s: %v", name, err)
	}
	return path, nil
}

// environ renders env as KEY=VALUE pairs, inheriting PATH when unset.
func environ(env map[string]string) []string {
	out := make([]string, 0, len(env)+1)
	if _, ok := env["PATH"]; !ok {
		out = append(out, "PATH="+os.Getenv("PATH"))
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
