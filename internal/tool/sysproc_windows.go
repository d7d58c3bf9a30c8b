//go:build windows

package tool

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// hideConsole prevents a console window from flashing up for the child
// process when the companion runs from a windowed context.
func hideConsole(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
