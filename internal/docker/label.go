package docker

import (
	"path"
	"strings"
)

// Label keys read from the tool container. All keys share the
// "ferium-companion." prefix so they never collide with labels set by
// Docker Compose or other tools.
const (
	// LabelPrefix is the common prefix for all ferium-companion labels.
	LabelPrefix = "ferium-companion."

	// LabelTool marks a container that has the mod tool installed.
	// Key: "ferium-companion.tool", Value: the tool name (e.g., "ferium").
	LabelTool = LabelPrefix + "tool"

	// LabelWorkdir optionally sets the working directory for exec'd
	// invocations, typically the Minecraft instance directory.
	LabelWorkdir = LabelPrefix + "workdir"

	// LabelUser optionally sets the user that runs the tool inside the
	// container (e.g., "minecraft" or "1000:1000").
	LabelUser = LabelPrefix + "user"
)

// ExecSettings are per-container exec options taken from labels.
type ExecSettings struct {
	WorkingDir string
	User       string
}

// ToolLabelValue returns the value LabelTool must carry for tool. Paths
// are reduced to their base name, so "/usr/local/bin/ferium" matches a
// container labelled "ferium".
func ToolLabelValue(tool string) string {
	return path.Base(strings.ReplaceAll(tool, `\`, "/"))
}

// ToolFilter returns the "label" filter value that selects containers
// carrying the tool, in the "key=value" form the Engine API expects.
func ToolFilter(tool string) string {
	return LabelTool + "=" + ToolLabelValue(tool)
}

// ParseExecSettings reads the optional exec labels. Missing labels leave
// the container defaults in place. A relative working directory is
// ignored because the Engine rejects it.
func ParseExecSettings(labels map[string]string) ExecSettings {
	var s ExecSettings
	if wd := strings.TrimSpace(labels[LabelWorkdir]); wd != "" && strings.HasPrefix(wd, "/") {
		s.WorkingDir = wd
	}
	s.User = strings.TrimSpace(labels[LabelUser])
	return s
}
