package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/clipboard"
	"github.com/shinji-kodama/ferium-companion/internal/companion"
	"github.com/shinji-kodama/ferium-companion/internal/config"
	"github.com/shinji-kodama/ferium-companion/internal/docker"
	"github.com/shinji-kodama/ferium-companion/internal/logging"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/profile"
	"github.com/shinji-kodama/ferium-companion/internal/status"
	"github.com/shinji-kodama/ferium-companion/internal/tool"
)

// Factories for the outside world. Tests replace them with fakes.
var (
	newRunner    = defaultRunner
	newClipboard = func() clipboard.Writer { return clipboard.System{} }
	newFetcher   = func(logger *zap.Logger) *profile.Fetcher {
		return profile.NewFetcher(profile.WithFetcherLogger(logger))
	}
)

// app is the per-command environment: resolved configuration, logger and
// the status slot shared with the service.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	status *status.Slot
}

// newApp loads the configuration, applies command-line overrides and
// builds the logger.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to load configuration", err)
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid flag", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return nil, model.NewCLIError(model.ExitConfigError,
			"invalid configuration: "+strings.Join(msgs, "; "))
	}

	logger := logging.New(logging.Options{
		Verbose: verbose,
		JSON:    cfg.LogJSON,
		Output:  cmd.ErrOrStderr(),
	})
	sugar = logger.Sugar()
	if cfg.Path != "" {
		VerboseLog("Loaded config from %s", cfg.Path)
	}

	return &app{cfg: cfg, logger: logger, status: status.NewSlot("")}, nil
}

// applyFlagOverrides copies explicitly set persistent flags into cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("tool") {
		cfg.Tool = toolFlag
	}
	if flags.Changed("runner") {
		kind, err := model.ParseRunnerKind(runnerFlag)
		if err != nil {
			return err
		}
		cfg.Runner = kind
	}
	if flags.Changed("container") {
		cfg.Container = containerFlag
		// Naming a container implies running inside it.
		if !flags.Changed("runner") {
			cfg.Runner = model.RunnerDocker
		}
	}
	if flags.Changed("timeout") {
		d, err := config.ParseTimeout(timeoutFlag)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSONFlag
	}
	return nil
}

// service builds the orchestration service. The returned cleanup must be
// called when the command is done with it.
func (a *app) service(ctx context.Context) (*companion.Service, func(), error) {
	runner, cleanup, err := newRunner(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	svc := companion.NewService(runner,
		companion.WithClipboard(newClipboard()),
		companion.WithStatus(a.status),
		companion.WithLogger(a.logger),
	)
	return svc, func() {
		if last := a.status.Get(); last != "" {
			VerboseLog("Last status: %s", last)
		}
		cleanup()
	}, nil
}

// store opens the profile store.
func (a *app) store() *profile.Store {
	return profile.NewStore(a.cfg.ProfileDir)
}

// repo returns the remote profile location, optionally overridden by a
// "owner/repo[/path]" flag value.
func (a *app) repo(override string) (profile.Repo, error) {
	rc := a.cfg.ProfileRepo
	if override != "" {
		parsed, err := config.ParseRepo(override)
		if err != nil {
			return profile.Repo{}, model.WrapCLIError(model.ExitConfigError, "invalid --repo", err)
		}
		rc = parsed
	}
	return profile.Repo{Owner: rc.Owner, Name: rc.Repo, Path: rc.Path}, nil
}

// defaultRunner creates the runner selected by the configuration.
func defaultRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (tool.Runner, func(), error) {
	switch cfg.Runner {
	case model.RunnerDocker:
		c, err := docker.NewClient()
		if err != nil {
			return nil, nil, err
		}
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		target, err := docker.FindToolContainer(ctx, c.Inner(), cfg.Container, cfg.Tool)
		if err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		VerboseLog("Running %s in container %s (%s)", cfg.Tool, target.Name, shortID(target.ID))
		runner := docker.NewExecRunner(c.Inner(), target, cfg.Tool,
			docker.WithExecTimeout(cfg.Timeout),
			docker.WithExecLogger(logger))
		return runner, func() { _ = c.Close() }, nil

	case model.RunnerLocal:
		runner := tool.NewExecRunner(cfg.Tool,
			tool.WithTimeout(cfg.Timeout),
			tool.WithLogger(logger))
		return runner, func() {}, nil

	default:
		return nil, nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unknown runner %q", cfg.Runner))
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
