package docker

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shinji-kodama/ferium-companion/internal/companion"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/tool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeExecAPI simulates the Engine exec endpoints. The attached stream is
// an in-memory pipe fed with multiplexed stdout/stderr frames.
type fakeExecAPI struct {
	stdout   string
	stderr   string
	exitCode int

	// hang keeps the stream open until the reader side is closed.
	hang bool

	createErr  error
	attachErr  error
	inspectErr error

	created container.ExecOptions
	target  string
}

func (f *fakeExecAPI) ContainerExecCreate(_ context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	f.target = containerID
	f.created = options
	if f.createErr != nil {
		return container.ExecCreateResponse{}, f.createErr
	}
	return container.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeExecAPI) ContainerExecAttach(_ context.Context, _ string, _ container.ExecAttachOptions) (types.HijackedResponse, error) {
	if f.attachErr != nil {
		return types.HijackedResponse{}, f.attachErr
	}

	client, server := net.Pipe()
	go func() {
		defer server.Close()
		if f.hang {
			// Block until the client closes its end.
			_, _ = server.Read(make([]byte, 1))
			return
		}
		if f.stdout != "" {
			_, _ = stdcopy.NewStdWriter(server, stdcopy.Stdout).Write([]byte(f.stdout))
		}
		if f.stderr != "" {
			_, _ = stdcopy.NewStdWriter(server, stdcopy.Stderr).Write([]byte(f.stderr))
		}
	}()
	return types.HijackedResponse{Conn: client, Reader: bufio.NewReader(client)}, nil
}

func (f *fakeExecAPI) ContainerExecInspect(_ context.Context, _ string) (container.ExecInspect, error) {
	if f.inspectErr != nil {
		return container.ExecInspect{}, f.inspectErr
	}
	return container.ExecInspect{ExecID: "exec-1", ExitCode: f.exitCode}, nil
}

var testTarget = Target{
	ID:     "abc123",
	Name:   "mc-server",
	Labels: map[string]string{LabelWorkdir: "/data", LabelUser: "minecraft"},
}

func TestExecRunner_Success(t *testing.T) {
	api := &fakeExecAPI{stdout: "Successfully added Sodium\n", stderr: "warn\n"}
	r := NewExecRunner(api, testTarget, "")

	outcome, err := r.Invoke(context.Background(), "add", "sodium")
	require.NoError(t, err)
	assert.True(t, outcome.ExitSucceeded)
	assert.Equal(t, "Successfully added Sodium\n", outcome.Stdout)
	assert.Equal(t, "warn\n", outcome.Stderr)

	assert.Equal(t, "abc123", api.target)
	assert.Equal(t, []string{tool.DefaultToolName, "add", "sodium"}, []string(api.created.Cmd))
	assert.True(t, api.created.AttachStdout)
	assert.True(t, api.created.AttachStderr)
	assert.Equal(t, "/data", api.created.WorkingDir)
	assert.Equal(t, "minecraft", api.created.User)
	assert.Equal(t, tool.DefaultToolName, r.Tool())
	assert.Equal(t, testTarget, r.Target())
}

// TestExecRunner_NonZeroExit verifies that a failing tool inside the
// container is an unsuccessful outcome, not an error.
func TestExecRunner_NonZeroExit(t *testing.T) {
	api := &fakeExecAPI{stderr: "project not found\n", exitCode: 1}
	outcome, err := NewExecRunner(api, testTarget, "ferium").Invoke(context.Background(), "add", "nope")
	require.NoError(t, err)
	assert.False(t, outcome.ExitSucceeded)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Equal(t, "project not found\n", outcome.Stderr)
}

// TestExecRunner_CommandNotFound covers a tool missing from the container:
// the exec itself succeeds, but the runtime exits 127 with its own message.
func TestExecRunner_CommandNotFound(t *testing.T) {
	api := &fakeExecAPI{
		stdout:   "OCI runtime exec failed: exec failed: unable to start container process: exec: \"ferium\": executable file not found in $PATH: unknown\n",
		exitCode: 127,
	}
	outcome, err := NewExecRunner(api, testTarget, "ferium").Invoke(context.Background(), "--version")
	require.Error(t, err)

	var launchErr *model.LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, "ferium", launchErr.Tool)
	assert.Equal(t, []string{"--version"}, launchErr.Args)
	assert.Contains(t, err.Error(), "executable file not found")
	assert.False(t, outcome.ExitSucceeded)
	assert.Equal(t, 127, outcome.ExitCode)
}

// A tool missing from the container is reported as a launch error by the
// availability check, not as an installed tool that failed.
func TestExecRunner_MissingToolNotAvailable(t *testing.T) {
	api := &fakeExecAPI{
		stdout:   "OCI runtime exec failed: exec failed: unable to start container process: exec: \"ferium\": executable file not found in $PATH: unknown\n",
		exitCode: 127,
	}
	svc := companion.NewService(NewExecRunner(api, testTarget, "ferium"))

	available, err := svc.Available(context.Background())
	assert.False(t, available)
	var launchErr *model.LaunchError
	require.ErrorAs(t, err, &launchErr)
}

func TestExecRunner_NotExecutable(t *testing.T) {
	api := &fakeExecAPI{
		stderr:   "OCI runtime exec failed: exec failed: unable to start container process: exec: \"ferium\": permission denied: unknown\n",
		exitCode: 126,
	}
	_, err := NewExecRunner(api, testTarget, "ferium").Invoke(context.Background(), "list")

	var launchErr *model.LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Contains(t, err.Error(), "permission denied")
}

// Exit statuses 126 and 127 without the runtime's message come from the
// tool itself and stay ordinary unsuccessful outcomes.
func TestExecRunner_ToolExit127(t *testing.T) {
	api := &fakeExecAPI{stderr: "sh: git: not found\n", exitCode: 127}
	outcome, err := NewExecRunner(api, testTarget, "ferium").Invoke(context.Background(), "upgrade")
	require.NoError(t, err)
	assert.False(t, outcome.ExitSucceeded)
	assert.Equal(t, 127, outcome.ExitCode)
	assert.Equal(t, "sh: git: not found\n", outcome.Stderr)
}

func TestExecRunner_DaemonErrors(t *testing.T) {
	boom := errors.New("daemon unreachable")
	tests := []struct {
		name string
		api  *fakeExecAPI
	}{
		{"create", &fakeExecAPI{createErr: boom}},
		{"attach", &fakeExecAPI{attachErr: boom}},
		{"inspect", &fakeExecAPI{inspectErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExecRunner(tt.api, testTarget, "ferium").Invoke(context.Background(), "list")
			var launchErr *model.LaunchError
			require.True(t, errors.As(err, &launchErr))
			assert.Equal(t, []string{"list"}, launchErr.Args)
			assert.ErrorIs(t, err, boom)
		})
	}
}

// TestExecRunner_Timeout verifies that a stuck exec stream is abandoned
// once the per-invocation bound expires.
func TestExecRunner_Timeout(t *testing.T) {
	api := &fakeExecAPI{hang: true}
	r := NewExecRunner(api, testTarget, "ferium", WithExecTimeout(50*time.Millisecond), WithExecLogger(nil))

	start := time.Now()
	_, err := r.Invoke(context.Background(), "upgrade")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var launchErr *model.LaunchError
	assert.True(t, errors.As(err, &launchErr))
}
