// Package model defines the domain types for the ferium-companion CLI.
//
// All entities in this package are transient: they are created per call
// into the orchestration layer, handed to the caller, and discarded. The
// external mod tool owns every piece of persistent mod state.
package model

import (
	"fmt"
	"strings"
)

// RunnerKind selects where the external mod tool is executed.
type RunnerKind string

const (
	// RunnerLocal executes the tool as a child process on this machine.
	RunnerLocal RunnerKind = "local"

	// RunnerDocker executes the tool inside a running Docker container
	// through the Docker Engine exec API.
	RunnerDocker RunnerKind = "docker"
)

// String returns the string representation of RunnerKind.
func (k RunnerKind) String() string {
	return string(k)
}

// IsValid checks whether the RunnerKind value is one of the
// predefined runners.
func (k RunnerKind) IsValid() bool {
	switch k {
	case RunnerLocal, RunnerDocker:
		return true
	default:
		return false
	}
}

// ParseRunnerKind converts a string to a RunnerKind.
// Returns an error if the string does not match any valid runner.
func ParseRunnerKind(s string) (RunnerKind, error) {
	kind := RunnerKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid runner: %q (valid: local, docker)", s)
	}
	return kind, nil
}

// Outcome is the raw captured result of one external tool invocation.
//
// A non-zero exit is a normal, unsuccessful Outcome and not an error.
// Failures to start the process at all are reported as *LaunchError
// by the runner instead of producing an Outcome.
type Outcome struct {
	// ExitSucceeded is true when the process exited with status 0.
	ExitSucceeded bool `json:"exitSucceeded"`

	// ExitCode is the process exit status. It is 0 on success.
	ExitCode int `json:"exitCode"`

	// Stdout holds everything the tool wrote to standard output.
	Stdout string `json:"stdout"`

	// Stderr holds everything the tool wrote to standard error.
	Stderr string `json:"stderr"`
}

// FailureOutput returns the most useful diagnostic text of an
// unsuccessful Outcome: stderr when present, stdout otherwise.
func (o Outcome) FailureOutput() string {
	if s := strings.TrimSpace(o.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(o.Stdout)
}

// ImportResult is the result of importing a batch of mod identifiers.
//
// Invariant: Success == (len(Failed) == 0).
type ImportResult struct {
	// Success is true when no identifier failed.
	Success bool `json:"success"`

	// Message is a human-readable summary with processed/failed counts.
	Message string `json:"message"`

	// Processed lists the accepted mods in input order. Each entry is the
	// tool's own name for the mod when it could be recovered from the
	// output, or the identifier as supplied otherwise.
	Processed []string `json:"processed"`

	// Failed lists the rejected identifiers in input order, exactly as
	// supplied. Surrounding whitespace is kept even though the tool was
	// invoked with the trimmed identifier.
	Failed []string `json:"failed"`
}

// ExportResult is the result of exporting the installed mod list.
type ExportResult struct {
	// Success is true when the list was captured and delivered
	// (copied to the clipboard, or written to the requested output).
	Success bool `json:"success"`

	// Message describes the outcome, including clipboard failures.
	Message string `json:"message"`

	// ModList is the newline-joined list of identifiers parsed from the
	// tool's list output.
	ModList string `json:"modList"`

	// Timestamp is the local wall-clock time of the capture (HH:MM:SS).
	Timestamp string `json:"timestamp"`
}

// UpgradeResult is the result of running the tool's upgrade command.
//
// Message is always one of the fixed summaries chosen by the output
// classifier from RawOutput.
type UpgradeResult struct {
	// Success mirrors whether the upgrade process exited successfully.
	Success bool `json:"success"`

	// Message is the classifier's human-readable summary.
	Message string `json:"message"`

	// RawOutput is stdout and stderr combined.
	RawOutput string `json:"rawOutput"`
}
