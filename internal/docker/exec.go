package docker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/tool"
)

// ExecAPI is the subset of the Engine client used to run commands in a
// container. *client.Client satisfies it.
type ExecAPI interface {
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
}

// ExecRunner runs the tool inside a container through the exec API.
type ExecRunner struct {
	api      ExecAPI
	target   Target
	tool     string
	timeout  time.Duration
	logger   *zap.Logger
	settings ExecSettings
}

// ExecOption configures an ExecRunner.
type ExecOption func(*ExecRunner)

// WithExecTimeout bounds each invocation. Zero disables the bound.
func WithExecTimeout(d time.Duration) ExecOption {
	return func(r *ExecRunner) {
		r.timeout = d
	}
}

// WithExecLogger sets the logger used for per-invocation debug records.
func WithExecLogger(logger *zap.Logger) ExecOption {
	return func(r *ExecRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewExecRunner creates a runner that executes tool inside target.
// An empty tool name falls back to tool.DefaultToolName.
func NewExecRunner(api ExecAPI, target Target, toolName string, opts ...ExecOption) *ExecRunner {
	if strings.TrimSpace(toolName) == "" {
		toolName = tool.DefaultToolName
	}
	r := &ExecRunner{
		api:      api,
		target:   target,
		tool:     toolName,
		timeout:  tool.DefaultTimeout,
		logger:   zap.NewNop(),
		settings: target.Settings(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tool returns the tool name run inside the container.
func (r *ExecRunner) Tool() string {
	return r.tool
}

// Target returns the container the runner executes in.
func (r *ExecRunner) Target() Target {
	return r.target
}

// Invoke runs the tool in the container and waits for it to exit.
//
// Failures of the daemon or the container to create, attach or inspect
// the exec are *model.LaunchError, as are cancellation, timeout and a
// tool the runtime could not start. The
// Engine has no API to kill an exec, so on cancellation the stream is
// closed and the process inside the container is left to finish.
func (r *ExecRunner) Invoke(ctx context.Context, args ...string) (model.Outcome, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log := r.logger.With(
		zap.String("invocation", uuid.NewString()),
		zap.String("container", r.target.Name),
		zap.String("tool", r.tool),
		zap.Strings("args", args),
	)
	start := time.Now()

	created, err := r.api.ContainerExecCreate(ctx, r.target.ID, container.ExecOptions{
		Cmd:          append([]string{r.tool}, args...),
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   r.settings.WorkingDir,
		User:         r.settings.User,
	})
	if err != nil {
		log.Debug("exec create failed", zap.Error(err))
		return model.Outcome{}, r.launchError(args, err)
	}

	attach, err := r.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		log.Debug("exec attach failed", zap.Error(err))
		return model.Outcome{}, r.launchError(args, err)
	}
	defer attach.Close()

	// Without a TTY the Engine multiplexes stdout and stderr on one
	// connection, each frame prefixed by an 8-byte header naming the
	// stream. StdCopy splits the frames back apart.
	var stdout, stderr strings.Builder
	copied := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		copied <- err
	}()

	select {
	case err = <-copied:
	case <-ctx.Done():
		// Closing the hijacked connection unblocks StdCopy. Waiting for
		// it means the builders are no longer written when read below.
		attach.Close()
		<-copied
		log.Debug("invocation cancelled", zap.Duration("elapsed", time.Since(start)), zap.Error(ctx.Err()))
		return model.Outcome{Stdout: stdout.String(), Stderr: stderr.String()}, r.launchError(args, ctx.Err())
	}

	outcome := model.Outcome{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		log.Debug("reading exec output failed", zap.Error(err))
		return outcome, r.launchError(args, err)
	}

	inspect, err := r.api.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		log.Debug("exec inspect failed", zap.Error(err))
		return outcome, r.launchError(args, err)
	}

	outcome.ExitCode = inspect.ExitCode
	outcome.ExitSucceeded = inspect.ExitCode == 0
	if err := startFailure(outcome); err != nil {
		log.Debug("tool could not start in container",
			zap.Int("exit_code", outcome.ExitCode), zap.Error(err))
		return outcome, r.launchError(args, err)
	}
	log.Debug("invocation finished",
		zap.Int("exit_code", outcome.ExitCode),
		zap.Duration("elapsed", time.Since(start)))
	return outcome, nil
}

// startFailure reports the runtime's own message when the exec finished
// without the tool ever running. The runtime exits 126 (not executable) or
// 127 (not found) and prints an "exec failed" line instead of tool output.
func startFailure(outcome model.Outcome) error {
	if outcome.ExitCode != 126 && outcome.ExitCode != 127 {
		return nil
	}
	text := outcome.FailureOutput()
	lower := strings.ToLower(text)
	for _, marker := range startFailureMarkers {
		if strings.Contains(lower, marker) {
			return errors.New(text)
		}
	}
	return nil
}

var startFailureMarkers = []string{
	"exec failed",
	"executable file not found",
}

func (r *ExecRunner) launchError(args []string, err error) *model.LaunchError {
	return &model.LaunchError{
		Tool: r.tool,
		Args: append([]string(nil), args...),
		Err:  err,
	}
}

// Ensure ExecRunner implements tool.Runner.
var _ tool.Runner = (*ExecRunner)(nil)
