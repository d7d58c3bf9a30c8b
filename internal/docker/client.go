package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// defaultPingTimeout bounds the daemon health check. Docker Desktop on
// macOS can take a few seconds to answer after waking up.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client with socket auto-detection
// across Linux, macOS and Windows, and a bounded daemon health check.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()  // releases the HTTP transport
//	if err := c.Ping(ctx); err != nil { /* Docker not running */ }
type Client struct {
	// inner is wrapped rather than embedded so that only the calls the
	// companion needs are part of this type's API.
	inner *client.Client
}

// NewClient creates a Docker client.
//
// The daemon address is taken from DOCKER_HOST when set, otherwise the
// platform default socket is tried:
//   - Linux: /var/run/docker.sock
//   - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//   - Windows: npipe:////./pipe/docker_engine
//
// Returns a model.CLIError with ExitDockerNotRunning if no socket is found
// or the client cannot be created.
func NewClient() (*Client, error) {
	// Step 1: an explicit DOCKER_HOST wins unconditionally. The SDK parses
	// the connection string, including tcp:// and ssh:// forms.
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	// Step 2: fall back to the well-known endpoint for the platform the
	// binary was built for.
	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker socket not found",
			err,
		)
	}
	return newClientWithHost(host)
}

// newClientWithHost creates a client for a Docker connection string such
// as "unix:///var/run/docker.sock" or "npipe:////./pipe/docker_engine".
func newClientWithHost(host string) (*Client, error) {
	// WithAPIVersionNegotiation downgrades the request API version to
	// whatever the daemon reports, so older Engine releases still answer.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost returns the first Docker endpoint that exists on this
// platform. Existence is checked without connecting; Ping verifies the
// daemon separately.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		// Rootless Docker sets DOCKER_HOST itself, so only the system
		// socket is checked here.
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		// Docker Desktop symlinks its socket into /var/run unless the
		// user declined the privileged helper. Newer releases always
		// create the per-user socket under ~/.docker/run.
		paths := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		// The named pipe path is fixed by Docker Desktop. os.Stat does not
		// work on named pipes, so a short dial checks that it exists.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			_ = conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first path that
// exists, in order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		// A successful Stat only shows the socket file exists. Whether a
		// daemon listens on it is left to Ping.
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v, is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable, waiting at most
// defaultPingTimeout.
//
// Returns a model.CLIError with ExitDockerNotRunning if the daemon does
// not respond.
func (c *Client) Ping(ctx context.Context) error {
	// A paused Docker Desktop accepts the connection and never answers,
	// so the ping gets its own deadline below the caller's.
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	// cancel releases the timer even when Ping returns early with an error.
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker daemon is not responding, is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases the client's resources. It is safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner returns the underlying SDK client. It satisfies both ContainerAPI
// and ExecAPI, which is how the container lookup and the exec runner get
// at the daemon without depending on this wrapper.
func (c *Client) Inner() *client.Client {
	return c.inner
}
