// Package tooltest provides a scripted test double for tool.Runner.
package tooltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// Runner is a thread-safe test double for tool.Runner. Responses are
// registered per argument vector; unregistered invocations fail with a
// *model.LaunchError so tests notice unexpected calls.
type Runner struct {
	mu       sync.RWMutex
	tool     string
	outcomes map[string]model.Outcome
	errors   map[string]error
	calls    [][]string
	hook     func(args []string)
}

// NewRunner creates a scripted runner that reports the given tool name.
func NewRunner(tool string) *Runner {
	return &Runner{
		tool:     tool,
		outcomes: make(map[string]model.Outcome),
		errors:   make(map[string]error),
	}
}

// Succeed registers a successful invocation printing stdout.
func (r *Runner) Succeed(stdout string, args ...string) *Runner {
	return r.Respond(model.Outcome{ExitSucceeded: true, Stdout: stdout}, args...)
}

// Fail registers an invocation that exits with code and prints stderr.
func (r *Runner) Fail(code int, stderr string, args ...string) *Runner {
	return r.Respond(model.Outcome{ExitCode: code, Stderr: stderr}, args...)
}

// Respond registers an arbitrary outcome for args.
func (r *Runner) Respond(outcome model.Outcome, args ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[key(args)] = outcome
	return r
}

// Error registers a launch failure for args. The error is wrapped in a
// *model.LaunchError unless it already is one.
func (r *Runner) Error(err error, args ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[key(args)] = err
	return r
}

// OnInvoke installs a hook that runs at the start of every invocation.
func (r *Runner) OnInvoke(hook func(args []string)) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
	return r
}

// Tool returns the configured tool name.
func (r *Runner) Tool() string {
	return r.tool
}

// Invoke records the call and returns the registered response.
func (r *Runner) Invoke(ctx context.Context, args ...string) (model.Outcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(args)
	}

	if err := ctx.Err(); err != nil {
		return model.Outcome{}, &model.LaunchError{Tool: r.tool, Args: args, Err: err}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	k := key(args)
	if err, ok := r.errors[k]; ok {
		if le, ok := err.(*model.LaunchError); ok {
			return model.Outcome{}, le
		}
		return model.Outcome{}, &model.LaunchError{Tool: r.tool, Args: args, Err: err}
	}
	if outcome, ok := r.outcomes[k]; ok {
		return outcome, nil
	}
	return model.Outcome{}, &model.LaunchError{
		Tool: r.tool,
		Args: args,
		Err:  fmt.Errorf("no scripted response for %q", k),
	}
}

// Calls returns a copy of every recorded argument vector, in order.
func (r *Runner) Calls() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	calls := make([][]string, len(r.calls))
	copy(calls, r.calls)
	return calls
}

func key(args []string) string {
	return strings.Join(args, "\x00")
}
