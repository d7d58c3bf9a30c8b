package model

import (
	"fmt"
	"strings"
)

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration file or flags are invalid.
	ExitConfigError ExitCode = 2

	// ExitToolNotFound indicates the external mod tool could not be started
	// (missing binary, permission denied, timeout before exit).
	ExitToolNotFound ExitCode = 3

	// ExitToolFailed indicates the external mod tool ran but exited
	// with a non-zero status.
	ExitToolFailed ExitCode = 4

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// when the docker runner is selected.
	ExitDockerNotRunning ExitCode = 5

	// ExitProfileError indicates a profile could not be read, written,
	// or fetched.
	ExitProfileError ExitCode = 6

	// ExitPartialFailure indicates a batch import finished but at least
	// one identifier failed.
	ExitPartialFailure ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// LaunchError reports that the external tool could not be started or did
// not run to completion: the executable is missing, not executable, the
// container is unreachable, or the invocation was cancelled.
//
// It is distinct from the tool running and exiting non-zero, which is a
// normal unsuccessful Outcome.
type LaunchError struct {
	// Tool is the executable name that was invoked.
	Tool string

	// Args are the arguments passed to the tool.
	Args []string

	// Err is the underlying OS, Docker, or context error.
	Err error
}

// Error describes the failed invocation.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", commandLine(e.Tool, e.Args), e.Err)
}

// Unwrap exposes the underlying cause (exec.ErrNotFound, os.ErrPermission,
// context.DeadlineExceeded, ...).
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ToolExitFailure reports that the tool ran but returned a non-zero exit
// status on a single-shot operation. Output carries the captured stderr
// (or stdout when stderr was empty) verbatim.
type ToolExitFailure struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   string
}

// Error describes the failed command and includes the captured output.
func (e *ToolExitFailure) Error() string {
	msg := fmt.Sprintf("%s command failed (exit status %d)", commandLine(e.Tool, e.Args), e.ExitCode)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	return msg
}

// ClipboardError reports that the host clipboard was unavailable or the
// write failed. It is embedded in ExportResult.Message and never aborts
// the export itself.
type ClipboardError struct {
	Err error
}

// Error describes the clipboard failure.
func (e *ClipboardError) Error() string {
	return fmt.Sprintf("failed to copy to clipboard: %v", e.Err)
}

// Unwrap returns the underlying clipboard error.
func (e *ClipboardError) Unwrap() error {
	return e.Err
}

func commandLine(tool string, args []string) string {
	if len(args) == 0 {
		return tool
	}
	return tool + " " + strings.Join(args, " ")
}
