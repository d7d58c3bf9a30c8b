package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ferium-companion/internal/classify"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/profile"
)

// importFlags holds the flag values for the import command.
type importFlags struct {
	// file is a text file with one identifier per line; "-" reads stdin.
	file string

	// profile names a saved profile whose mods are imported.
	profile string

	// fromRepo names a file in the remote profile repository.
	fromRepo string

	// repo overrides the configured remote repository.
	repo string
}

// NewImportCommand creates the "import" cobra command.
func NewImportCommand() *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import [mod-id...]",
		Short: "Add a list of mods to the active ferium profile",
		Long: `Add every given mod to the active ferium profile, one at a time.

Mods can be given as arguments, read from a file (one per line, '#' starts
a comment), taken from a saved profile, or fetched from the shared profile
repository. Sources are combined in that order. A mod that fails to import
does not stop the rest.

Examples:
  ferium-companion import sodium lithium AANobbMI
  ferium-companion import --file mods.txt
  pbpaste | ferium-companion import --file -
  ferium-companion import --profile fabric-1.21
  ferium-companion import --from-repo performance.txt`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read identifiers from a file (- for stdin)")
	cmd.Flags().StringVarP(&flags.profile, "profile", "p", "", "Import the mods of a saved profile")
	cmd.Flags().StringVar(&flags.fromRepo, "from-repo", "", "Import a profile file from the shared repository")
	cmd.Flags().StringVar(&flags.repo, "repo", "", "Shared repository as owner/repo[/path]")

	return cmd
}

func runImport(cmd *cobra.Command, flags *importFlags, args []string) error {
	if len(args) == 0 && flags.file == "" && flags.profile == "" && flags.fromRepo == "" {
		return model.NewCLIError(model.ExitGeneralError,
			"nothing to import: pass mod identifiers, --file, --profile or --from-repo")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ids, err := collectIdentifiers(ctx, cmd.InOrStdin(), a, flags, args)
	if err != nil {
		return err
	}
	VerboseLog("Importing %d identifiers", len(ids))

	svc, cleanup, err := a.service(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result := svc.ImportAll(ctx, ids)
	printImportResult(cmd.OutOrStdout(), result)
	if !result.Success {
		return reported(model.ExitPartialFailure)
	}
	return nil
}

// collectIdentifiers gathers identifiers from every source the user gave.
func collectIdentifiers(ctx context.Context, stdin io.Reader, a *app, flags *importFlags, args []string) ([]string, error) {
	ids := append([]string{}, args...)

	if flags.file != "" {
		text, err := readInput(stdin, flags.file)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to read %s", flags.file), err)
		}
		ids = append(ids, classify.SplitIdentifiers(text)...)
	}

	if flags.profile != "" {
		p, err := a.store().Load(flags.profile)
		if err != nil {
			return nil, profileError(flags.profile, err)
		}
		ids = append(ids, p.Mods...)
	}

	if flags.fromRepo != "" {
		repo, err := a.repo(flags.repo)
		if err != nil {
			return nil, err
		}
		p, err := newFetcher(a.logger).FetchProfile(ctx, repo, flags.fromRepo)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitProfileError,
				fmt.Sprintf("failed to fetch %q from %s", flags.fromRepo, repo), err)
		}
		ids = append(ids, p.Mods...)
	}

	return ids, nil
}

// readInput reads a whole file, or stdin when name is "-".
func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

// profileError maps store errors to the profile exit code.
func profileError(name string, err error) error {
	if errors.Is(err, profile.ErrNotFound) {
		return model.NewCLIError(model.ExitProfileError, fmt.Sprintf("profile %q not found", name))
	}
	return model.WrapCLIError(model.ExitProfileError, fmt.Sprintf("profile %q", name), err)
}

// printImportResult outputs the import result in text or JSON format.
func printImportResult(w io.Writer, result model.ImportResult) {
	if IsJSONOutput() {
		printJSON(w, result)
		return
	}

	fmt.Fprintln(w, result.Message)
	if len(result.Processed) > 0 {
		fmt.Fprintln(w, "\nImported:")
		for _, name := range result.Processed {
			fmt.Fprintf(w, "  ✓ %s\n", name)
		}
	}
	if len(result.Failed) > 0 {
		fmt.Fprintln(w, "\nFailed:")
		for _, id := range result.Failed {
			fmt.Fprintf(w, "  ✗ %s\n", id)
		}
	}
}
