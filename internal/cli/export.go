package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// exportFlags holds the flag values for the export command.
type exportFlags struct {
	// noClipboard prints the list instead of copying it.
	noClipboard bool

	// output writes the list to a file instead of the clipboard.
	output string
}

// NewExportCommand creates the "export" cobra command.
func NewExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the installed mod list to the clipboard",
		Long: `Capture the mods of the active ferium profile as one identifier per
line and copy the list to the clipboard, ready to paste into "import".

Examples:
  ferium-companion export
  ferium-companion export --no-clipboard > mods.txt
  ferium-companion export --output mods.txt`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noClipboard, "no-clipboard", false, "Print the list instead of copying it")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the list to a file instead of the clipboard")

	return cmd
}

func runExport(cmd *cobra.Command, flags *exportFlags) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	svc, cleanup, err := a.service(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	w := cmd.OutOrStdout()

	if flags.noClipboard || flags.output != "" {
		result, err := svc.CaptureModList(ctx)
		if err != nil {
			return err
		}
		if flags.output != "" {
			if err := os.WriteFile(flags.output, []byte(result.ModList+"\n"), 0o644); err != nil {
				return model.WrapCLIError(model.ExitGeneralError,
					fmt.Sprintf("failed to write %s", flags.output), err)
			}
			result.Message = fmt.Sprintf("Wrote mod list to %s", flags.output)
			printExportResult(w, result, false)
			return nil
		}
		printExportResult(w, result, true)
		return nil
	}

	result, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	printExportResult(w, result, !result.Success)
	if !result.Success {
		return reported(model.ExitGeneralError)
	}
	return nil
}

// printExportResult outputs the export result. In text mode withList
// prints the captured list after the message so it can be copied by hand
// or redirected.
func printExportResult(w io.Writer, result model.ExportResult, withList bool) {
	if IsJSONOutput() {
		printJSON(w, result)
		return
	}

	if !withList {
		fmt.Fprintln(w, result.Message)
		return
	}
	if !result.Success {
		fmt.Fprintln(w, result.Message)
	}
	if result.ModList != "" {
		fmt.Fprintln(w, result.ModList)
	}
}
