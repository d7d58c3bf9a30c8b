package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// NewUpgradeCommand creates the "upgrade" cobra command.
func NewUpgradeCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade all mods in the active ferium profile",
		Long: `Run "ferium upgrade" and print a one-line summary of what happened,
followed by the tool's own output.

Examples:
  ferium-companion upgrade
  ferium-companion upgrade --quiet
  ferium-companion upgrade --json`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Upgrade(cmd.Context())
			if err != nil {
				return err
			}
			printUpgradeResult(cmd.OutOrStdout(), result, quiet)
			if !result.Success {
				return reported(model.ExitToolFailed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the summary line")

	return cmd
}

// printUpgradeResult outputs the upgrade summary and, unless quiet, the
// tool's raw output.
func printUpgradeResult(w io.Writer, result model.UpgradeResult, quiet bool) {
	if IsJSONOutput() {
		printJSON(w, result)
		return
	}

	fmt.Fprintln(w, result.Message)
	if raw := strings.TrimSpace(result.RawOutput); raw != "" && !quiet {
		fmt.Fprintln(w)
		fmt.Fprintln(w, raw)
	}
}
