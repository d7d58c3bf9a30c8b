// Package model defines the domain types and value objects for the
// ferium-companion CLI.
//
// This package contains pure data structures with no external dependencies.
// The result types (ImportResult, ExportResult, UpgradeResult) are created
// fresh for every call into the orchestration layer and are never persisted.
//
// The package also defines exit codes (ExitCode), the custom CLI error type
// (CLIError) that carries exit codes for proper OS process exit handling,
// and the error taxonomy for talking to the external mod tool (LaunchError,
// ToolExitFailure, ClipboardError).
package model
