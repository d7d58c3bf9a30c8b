package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the mods of the active ferium profile",
		Long: `Print the identifiers of every mod in the active ferium profile, one
per line. The output can be fed straight back into "import --file -".

Examples:
  ferium-companion list
  ferium-companion list --json
  ferium-companion list > mods.txt`,

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

			mods, err := svc.ListMods(cmd.Context())
			if err != nil {
				return err
			}
			VerboseLog("Found %d mods", len(mods))

			printModList(cmd.OutOrStdout(), mods)
			return nil
		},
	}
}

// printModList outputs mods one per line, or as {"mods": [...]} with --json.
// An empty list prints nothing in text mode so redirects stay clean.
func printModList(w io.Writer, mods []string) {
	if IsJSONOutput() {
		type resultJSON struct {
			Count int      `json:"count"`
			Mods  []string `json:"mods"`
		}
		result := resultJSON{Count: len(mods), Mods: make([]string, 0, len(mods))}
		result.Mods = append(result.Mods, mods...)
		printJSON(w, result)
		return
	}

	for _, mod := range mods {
		fmt.Fprintln(w, mod)
	}
}
