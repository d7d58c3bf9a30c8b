package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// ContainerAPI is the subset of the Engine client used to locate the tool
// container. *client.Client satisfies it.
type ContainerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// Target is the container the tool runs in.
type Target struct {
	ID     string
	Name   string
	Labels map[string]string
}

// Settings returns the exec options encoded in the container's labels.
func (t Target) Settings() ExecSettings {
	return ParseExecSettings(t.Labels)
}

// FindToolContainer resolves the container that runs tool.
//
// When nameOrID is set it is inspected directly and must be running.
// Otherwise the running containers labelled ferium-companion.tool=<tool>
// are listed and exactly one must match; zero or several matches are a
// configuration error that asks the user to name the container.
func FindToolContainer(ctx context.Context, api ContainerAPI, nameOrID, tool string) (Target, error) {
	// Step 1: an explicit --container or config value is inspected as is.
	// The Engine accepts a name, a full ID or an unambiguous ID prefix.
	if nameOrID = strings.TrimSpace(nameOrID); nameOrID != "" {
		return inspectTarget(ctx, api, nameOrID)
	}

	// Step 2: otherwise look the container up by label. Filtering happens
	// on the daemon, so only labelled running containers come back.
	args := filters.NewArgs(
		filters.Arg("label", ToolFilter(tool)),
		filters.Arg("status", "running"),
	)
	containers, err := api.ContainerList(ctx, container.ListOptions{Filters: args})
	if err != nil {
		return Target{}, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	switch len(containers) {
	case 0:
		return Target{}, model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("no running container labelled %s; set --container", ToolFilter(tool)),
		)
	case 1:
		return summaryToTarget(containers[0]), nil
	default:
		names := make([]string, 0, len(containers))
		for _, c := range containers {
			names = append(names, summaryToTarget(c).Name)
		}
		return Target{}, model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("%d containers labelled %s (%s); set --container",
				len(containers), ToolFilter(tool), strings.Join(names, ", ")),
		)
	}
}

func inspectTarget(ctx context.Context, api ContainerAPI, nameOrID string) (Target, error) {
	info, err := api.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return Target{}, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to inspect container %q", nameOrID),
			err,
		)
	}
	if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
		return Target{}, model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("container %q is not running", nameOrID),
		)
	}

	var labels map[string]string
	if info.Config != nil {
		labels = info.Config.Labels
	}
	return Target{
		ID:     info.ID,
		Name:   strings.TrimPrefix(info.Name, "/"),
		Labels: labels,
	}, nil
}

// summaryToTarget maps a list entry to a Target. The Engine reports names
// with a leading "/", which is stripped.
func summaryToTarget(c container.Summary) Target {
	name := c.ID
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	return Target{ID: c.ID, Name: name, Labels: c.Labels}
}
