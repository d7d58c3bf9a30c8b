// Package cli implements the cobra-based CLI commands for ferium-companion.
//
// Each subcommand (import, export, list, upgrade, check, profile, tui) is defined
// in its own file within this package. This file defines the root command
// that carries the global flags and maps errors to exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// Global flag variables shared across all subcommands. They are bound to
// persistent flags on the root command and reset every time
// NewRootCommand runs.
var (
	// jsonOutput switches command output and errors to JSON.
	jsonOutput bool

	// verbose enables debug logging and the [verbose] trace lines.
	verbose bool

	// configPath overrides the config file location.
	configPath string

	// Overrides for config values. They only apply when the flag was set
	// on the command line.
	toolFlag      string
	runnerFlag    string
	containerFlag string
	timeoutFlag   string
	logJSONFlag   bool
)

// Version, Commit and Date are set at build time via ldflags.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// sugar backs VerboseLog. It is replaced once a command has built its
// logger.
var sugar = zap.NewNop().Sugar()

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action. It provides help
// text and global flags; the work is done by subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ferium-companion",
		Short: "Batch import, export and upgrade helper for the ferium mod manager",
		Long: `ferium-companion drives the ferium Minecraft mod manager for bulk work.

It imports a whole list of mods in one go, exports the installed mods as a
shareable list, runs upgrades with a readable summary, and keeps named mod
profiles that can be saved locally or fetched from a GitHub repository.`,

		// Errors are printed by Run in text or JSON form.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ferium-companion/config.jsonc)")
	flags.StringVar(&toolFlag, "tool", "", "Mod tool executable (default: ferium)")
	flags.StringVar(&runnerFlag, "runner", "", "Where the tool runs: local or docker")
	flags.StringVar(&containerFlag, "container", "", "Container name or ID for the docker runner")
	flags.StringVar(&timeoutFlag, "timeout", "", "Per-invocation timeout, e.g. 90s or 10m (0 disables)")
	flags.BoolVar(&logJSONFlag, "log-json", false, "Write logs as JSON")

	// Reset state left over from a previous command in the same process.
	sugar = zap.NewNop().Sugar()

	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewUpgradeCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewProfileCommand())
	rootCmd.AddCommand(NewTUICommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the mapped
// exit code when it fails.
//
// Ctrl-C and SIGTERM cancel the command's context, so a running tool
// invocation is stopped and an import batch records the remaining mods as
// failed instead of dying half way.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := RunContext(ctx, rootCmd)
	stop()

	if code != model.ExitSuccess {
		os.Exit(int(code))
	}
}

// RunContext is Run with ctx as the context of every command.
func RunContext(ctx context.Context, rootCmd *cobra.Command) model.ExitCode {
	rootCmd.SetContext(ctx)
	return Run(rootCmd)
}

// Run executes the root command, prints any error to the command's error
// stream and returns the exit code for it.
func Run(rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.Execute()
	if err == nil {
		return model.ExitSuccess
	}

	code := ExitCodeFor(err)
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		// An empty message means the command already reported the
		// failure as part of its output.
		if cliErr.Message != "" || cliErr.Err != nil {
			printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		}
		return code
	}
	printError(rootCmd.ErrOrStderr(), err.Error(), nil)
	return code
}

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	var launchErr *model.LaunchError
	if errors.As(err, &launchErr) {
		return model.ExitToolNotFound
	}
	var exitErr *model.ToolExitFailure
	if errors.As(err, &exitErr) {
		return model.ExitToolFailed
	}
	return model.ExitGeneralError
}

// reported returns an error that only carries an exit code. The command
// has already printed the details.
func reported(code model.ExitCode) error {
	return model.NewCLIError(code, "")
}

// printError writes an error message in the format selected by --json.
// Errors always go to stderr; stdout is reserved for command output.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// VerboseLog records a trace line at debug level. It is visible with
// --verbose only.
func VerboseLog(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
