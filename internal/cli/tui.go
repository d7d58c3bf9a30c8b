package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/companion"
	"github.com/shinji-kodama/ferium-companion/internal/config"
	"github.com/shinji-kodama/ferium-companion/internal/logging"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/tui"
)

// runTUI starts the terminal UI. Tests replace it to avoid taking over the
// terminal.
var runTUI = tui.Run

// NewTUICommand creates the "tui" cobra command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Long: `Open a full-screen UI with one tab per operation: paste a list of mods
to import, export the installed mods to the clipboard, or run an upgrade.
Only one operation runs at a time; the status line follows its progress.

With --verbose the UI logs to tui.log in the config directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			logger, closeLog, err := tuiLogger(cmd, a)
			if err != nil {
				return err
			}
			defer closeLog()
			a.logger = logger

			svc, cleanup, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runTUI(cmd.Context(), svc, a.status, svc.Tool()); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "terminal UI failed", err)
			}
			return nil
		},
	}
}

// tuiLogger replaces the stderr logger, which would draw over the UI.
func tuiLogger(cmd *cobra.Command, a *app) (*zap.Logger, func(), error) {
	if !verbose {
		return logging.Discard(), func() {}, nil
	}

	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, model.WrapCLIError(model.ExitGeneralError, "failed to create log directory", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304 -- fixed path under the config directory
	if err != nil {
		return nil, nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to open %s", path), err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Logging to %s\n", path)

	logger := logging.New(logging.Options{Verbose: true, JSON: a.cfg.LogJSON, Output: f})
	sugar = logger.Sugar()
	return logger, func() {
		_ = logger.Sync()
		_ = f.Close()
	}, nil
}

// Ensure the service satisfies what the UI drives.
var _ tui.Service = (*companion.Service)(nil)
