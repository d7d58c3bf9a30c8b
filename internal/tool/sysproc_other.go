//go:build !windows

package tool

import "os/exec"

// hideConsole is a no-op outside Windows; there is no console subsystem
// that would open a window for the child.
func hideConsole(_ *exec.Cmd) {}
