package tool

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// DefaultToolName is the executable invoked when no tool is configured.
const DefaultToolName = "ferium"

// DefaultTimeout bounds a single invocation. Upgrades that download many
// jars are the slowest calls the companion makes.
const DefaultTimeout = 10 * time.Minute

// waitDelay is how long Wait keeps draining output pipes after the child
// has exited or been killed. A grandchild that inherited the pipes would
// otherwise block Wait forever.
const waitDelay = 2 * time.Second

// Runner invokes the external mod tool with the given arguments.
//
// Implementations run one invocation to completion before returning and
// perform no retries. A non-zero exit is returned as an unsuccessful
// Outcome with a nil error; failing to run the tool at all is returned as
// *model.LaunchError.
type Runner interface {
	// Invoke runs the tool once with args and returns its captured output.
	Invoke(ctx context.Context, args ...string) (model.Outcome, error)

	// Tool returns the name of the executable this runner invokes.
	Tool() string
}

// ExecRunner runs the tool as a local child process.
type ExecRunner struct {
	tool      string
	timeout   time.Duration
	waitDelay time.Duration
	logger    *zap.Logger
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithTimeout bounds each invocation. A zero or negative duration
// disables the bound, and the invocation then only ends when the tool
// exits or the caller's context is cancelled.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for per-invocation debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(r *ExecRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewExecRunner creates a runner for the given executable name or path.
// An empty name falls back to DefaultToolName.
func NewExecRunner(tool string, opts ...Option) *ExecRunner {
	if strings.TrimSpace(tool) == "" {
		tool = DefaultToolName
	}
	r := &ExecRunner{
		tool:      tool,
		timeout:   DefaultTimeout,
		waitDelay: waitDelay,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tool returns the executable this runner invokes.
func (r *ExecRunner) Tool() string {
	return r.tool
}

// Invoke executes the tool with args and waits for it to exit.
//
// Stdout and stderr are captured into separate buffers. The exit status
// decides Outcome.ExitSucceeded, even when the tool exits right as the
// deadline fires. When the executable cannot be found or started, or the
// context stops the tool before it exits, a *model.LaunchError is
// returned together with whatever output had been captured so far.
func (r *ExecRunner) Invoke(ctx context.Context, args ...string) (model.Outcome, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log := r.logger.With(
		zap.String("invocation", uuid.NewString()),
		zap.String("tool", r.tool),
		zap.Strings("args", args),
	)
	start := time.Now()

	// #nosec G204 -- tool name comes from configuration, args are never
	// passed through a shell.
	cmd := exec.CommandContext(ctx, r.tool, args...)
	cmd.WaitDelay = r.waitDelay
	hideConsole(cmd)

	// killed is only set when the context actually stopped the child.
	// Windows reports a killed process as an ordinary exit.
	var killed atomic.Bool
	cmd.Cancel = func() error {
		err := cmd.Process.Kill()
		if err == nil {
			killed.Store(true)
		}
		return err
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := model.Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		outcome.ExitSucceeded = true
		log.Debug("invocation finished",
			zap.Int("exit_code", 0),
			zap.Duration("elapsed", time.Since(start)))
		return outcome, nil
	}

	// The child ran to its own exit. Wait can still return an error when a
	// grandchild kept the output pipes open past the wait delay
	// (exec.ErrWaitDelay), or when the deadline fired while output was
	// being drained. The exit status is what the tool reported either way.
	if ps := cmd.ProcessState; ps != nil && ps.Exited() && !killed.Load() {
		outcome.ExitCode = ps.ExitCode()
		outcome.ExitSucceeded = ps.Success()
		log.Debug("invocation finished",
			zap.Int("exit_code", outcome.ExitCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.NamedError("wait_error", err))
		return outcome, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("invocation cancelled", zap.Duration("elapsed", time.Since(start)), zap.Error(ctxErr))
		return outcome, r.launchError(args, ctxErr)
	}

	// Terminated by a signal nobody here sent: the tool ran and failed.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		log.Debug("invocation finished",
			zap.Int("exit_code", outcome.ExitCode),
			zap.Duration("elapsed", time.Since(start)))
		return outcome, nil
	}

	log.Debug("invocation could not start", zap.Error(err))
	return outcome, r.launchError(args, err)
}

func (r *ExecRunner) launchError(args []string, err error) *model.LaunchError {
	return &model.LaunchError{
		Tool: r.tool,
		Args: append([]string(nil), args...),
		Err:  err,
	}
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
