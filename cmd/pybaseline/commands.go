package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pybaseline/internal/adapters/output"
	"pybaseline/internal/core/domain"
	"pybaseline/internal/goals"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/httpclient"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/platform/ui"
	"pybaseline/internal/process"
	"pybaseline/internal/snapshot"
	"pybaseline/internal/tools"
)

// session is everything a command needs once configuration is loaded.
type session struct {
	cfg     config.Config
	logger  logx.Logger
	console ui.Console
	fetcher *tools.Fetcher
	env     goals.Env
}

func (a *app) bootstrap() (*session, error) {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return nil, err
	}

	logger := logx.NewWithWriter(a.stderr, logx.ParseLevel(cfg.LogLevel))
	logger.Debug("pybaseline starting",
		"version", version,
		"commit", commit,
		"workspace", cfg.Workspace,
		"config", cfg.ConfigPath,
	)

	platform, err := domain.HostPlatform()
	if err != nil {
		// Leave the platform empty: tool downloads fail closed, pytest still runs.
		logger.Warn("host platform not supported for tool downloads", "error", err.Error())
		platform = ""
	}

	store := snapshot.NewStore(cfg.Workspace, logger)
	httpCfg := httpclient.DefaultConfig()
	httpCfg.UserAgent = userAgent()
	client := httpclient.New(httpCfg, logger)
	fetcher := tools.NewFetcher(cfg.Tools.CacheDir, client, store, cfg.Tools.Signatures, logger)
	runner := process.NewRunner(store, process.RunnerConfig{KeepSandboxes: a.keepSandboxes}, logger)
	console := ui.New(ui.ParseMode(a.uiMode), a.stdout, a.stderr)

	return &session{
		cfg:     cfg,
		logger:  logger,
		console: console,
		fetcher: fetcher,
		env: goals.Env{
			Fetcher:  fetcher,
			Store:    store,
			Executor: process.NewMemo(runner, logger),
			Console:  console,
			Logger:   logger,
			Platform: platform,
			Timeout:  cfg.Timeout(),
			LookPath: tools.LookPath,
		},
	}, nil
}

func goalCommands(a *app) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(goals.Catalog))
	for _, d := range goals.Catalog {
		name := d.Name
		cmds = append(cmds, &cobra.Command{
			Use:   name,
			Short: d.Help,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := a.bootstrap()
				if err != nil {
					return err
				}
				reg, err := goals.NewRegistry(rt.cfg, rt.env)
				if err != nil {
					return err
				}
				start := time.Now()
				res, err := goals.Run(cmd.Context(), reg, rt.console, name)
				if err != nil {
					return err
				}
				elapsed := time.Since(start)
				rt.logger.Debug("goal finished", "goal", name, "exit_code", res.ExitCode, "duration", ui.FormatDuration(elapsed))
				if a.reportPath != "" {
					if err := output.WriteFile(a.reportPath, output.NewReport(res, elapsed, version)); err != nil {
						return err
					}
				}
				a.exitCode = res.ExitCode
				return nil
			},
		})
	}
	return cmds
}

func toolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and prefetch the downloadable tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured tool versions and their pins for this platform",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			for _, name := range config.ToolNames() {
				spec, err := rt.cfg.ToolSpec(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%-5s %-16s %s\n", spec.Name, spec.Version, pinStatus(spec, rt.env.Platform))
			}
			fmt.Fprintf(a.stdout, "cache: %s\n", rt.fetcher.CacheDir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "fetch <tool>...",
		Short:     "Download and verify tools into the cache",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: config.ToolNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			for _, name := range args {
				spec, err := rt.cfg.ToolSpec(strings.ToLower(name))
				if err != nil {
					return err
				}
				if pinStatus(spec, rt.env.Platform) == "unpinned" {
					rt.console.Warning(fmt.Sprintf("%s has no checksum pin for %s; the archive is not verified", spec, rt.env.Platform))
				}
				tool, err := rt.fetcher.Fetch(cmd.Context(), spec, rt.env.Platform)
				if err != nil {
					return errors.Wrapf(err, "fetch %s", spec)
				}
				rt.console.Success(fmt.Sprintf("%s ready (%s)", spec, tool.Snapshot.Digest().Short()))
			}
			return nil
		},
	})
	return cmd
}

// pinStatus describes how the archive for platform will be verified.
func pinStatus(spec domain.ToolSpec, platform domain.Platform) string {
	if platform == "" {
		return "unsupported platform"
	}
	if pin, ok := spec.Pin(platform); ok && pin.Pinned() {
		return "pinned " + shortHash(pin.SHA256)
	}
	return "unpinned"
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.flags)
			if err != nil {
				return err
			}
			out, err := cfg.ToYAML()
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, out)
			return nil
		},
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// userAgent identifies this build to release hosts.
func userAgent() string {
	return "pybaseline/" + version
}
