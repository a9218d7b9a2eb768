// cmd/pybaseline/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
)

var (
	// Set with -ldflags at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app holds the parsed global flags and the exit code of the goal that ran.
type app struct {
	stdout io.Writer
	stderr io.Writer

	flags         *config.Flags
	uiMode        string
	keepSandboxes bool
	reportPath    string

	exitCode int
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, cancel := rootContextWithSignals()
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errors.ExitCode(err)
	}
	return a.exitCode
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pybaseline",
		Short: "Opinionated quality baseline for Python projects",
		Long: "pybaseline runs Ruff, ty, pytest and uv against the Python projects in a workspace\n" +
			"with one shared configuration. Tools are downloaded, verified and cached on first use.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&a.uiMode, "ui", "auto", "Console style: auto, pretty, raw, quiet")
	root.PersistentFlags().BoolVar(&a.keepSandboxes, "keep-sandboxes", false, "Keep process sandboxes on disk for debugging")
	root.PersistentFlags().StringVar(&a.reportPath, "report", "", "Write a JSON report of the goal result to this file")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	})

	for _, cmd := range goalCommands(a) {
		root.AddCommand(cmd)
	}
	root.AddCommand(toolsCmd(a), configCmd(a))
	return root
}

// rootContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
// The returned cancel function also releases the signal handler.
func rootContextWithSignals() (context.Context, context.CancelFunc) {
	base, baseCancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanup := func() {
		signal.Stop(ch)
		baseCancel()
	}
	return base, cleanup
}
