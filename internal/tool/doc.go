// Package tool runs the external mod tool (ferium by default) as a child
// process and captures what it prints.
//
// All invocations go through os/exec rather than any library binding,
// because the tool is a separately installed program treated as an opaque
// collaborator. The only contract is its command line, its exit status,
// and its human-readable output.
//
// Standard output and standard error are always captured separately and
// never inherited from the caller's console. On Windows the child is
// created without a console window so that GUI/TUI callers do not flash
// a terminal.
//
// Two failure modes are kept apart:
//   - the process could not be started, or was killed by cancellation or
//     timeout: reported as *model.LaunchError
//   - the process ran and exited non-zero: reported as a normal
//     model.Outcome with ExitSucceeded == false and a nil error
package tool
