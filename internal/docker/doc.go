// Package docker runs the external mod tool inside a Docker container.
//
// Some setups keep ferium next to a Minecraft server in a container rather
// than on the host. This package locates that container, either by an
// explicit name or ID or by the "ferium-companion.tool" label, and runs
// each invocation through the Docker Engine exec API. ExecRunner
// implements tool.Runner, so the rest of the program cannot tell a
// containerised tool from a local one.
package docker
