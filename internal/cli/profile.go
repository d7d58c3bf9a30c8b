package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/profile"
)

// NewProfileCommand creates the "profile" command group.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Save, load and share named mod lists",
		Long: `Profiles are named mod lists kept as YAML files in the profile
directory. They can be captured from ferium, imported back into it, or
fetched from a shared GitHub repository.`,
	}

	cmd.AddCommand(newProfileSaveCommand())
	cmd.AddCommand(newProfileLoadCommand())
	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileDeleteCommand())
	cmd.AddCommand(newProfileFetchCommand())

	return cmd
}

func newProfileSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the installed mods as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := profile.ValidateName(name); err != nil {
				return model.WrapCLIError(model.ExitProfileError, "invalid profile name", err)
			}

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

			p := &profile.Profile{Name: name, Mods: mods, Source: profile.SourceLocal}
			if err := a.store().Save(p); err != nil {
				return profileError(name, err)
			}
			VerboseLog("Saved %s to %s", name, a.store().Dir())

			printProfileSaved(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newProfileLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Import every mod of a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			p, err := a.store().Load(args[0])
			if err != nil {
				return profileError(args[0], err)
			}

			svc, cleanup, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result := svc.ImportAll(cmd.Context(), p.Mods)
			printImportResult(cmd.OutOrStdout(), result)
			if !result.Success {
				return reported(model.ExitPartialFailure)
			}
			return nil
		},
	}
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			profiles, err := a.store().List()
			if err != nil {
				return model.WrapCLIError(model.ExitProfileError, "failed to list profiles", err)
			}
			printProfileList(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print the mods of a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			p, err := a.store().Load(args[0])
			if err != nil {
				return profileError(args[0], err)
			}

			w := cmd.OutOrStdout()
			if IsJSONOutput() {
				printJSON(w, p)
				return nil
			}
			if text := p.Text(); text != "" {
				fmt.Fprintln(w, text)
			}
			return nil
		},
	}
}

func newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.store().Delete(args[0]); err != nil {
				return profileError(args[0], err)
			}
			if !IsJSONOutput() {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %q\n", args[0])
			} else {
				printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			return nil
		},
	}
}

func newProfileFetchCommand() *cobra.Command {
	var repoFlag string

	cmd := &cobra.Command{
		Use:   "fetch [name]",
		Short: "Download shared profiles from GitHub",
		Long: `Download profile files from the shared GitHub repository and save
them locally. Each file holds one mod identifier per line. Without a name
every file in the repository directory is fetched.

Set GITHUB_TOKEN to raise the API rate limit.

Examples:
  ferium-companion profile fetch
  ferium-companion profile fetch performance
  ferium-companion profile fetch --repo someone/modpacks/fabric`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			repo, err := a.repo(repoFlag)
			if err != nil {
				return err
			}

			fetcher := newFetcher(a.logger)
			var profiles []*profile.Profile
			if len(args) == 1 {
				p, err := fetcher.FetchProfile(cmd.Context(), repo, args[0])
				if err != nil {
					return model.WrapCLIError(model.ExitProfileError,
						fmt.Sprintf("failed to fetch %q from %s", args[0], repo), err)
				}
				profiles = []*profile.Profile{p}
			} else {
				profiles, err = fetcher.FetchProfiles(cmd.Context(), repo)
				if err != nil {
					return model.WrapCLIError(model.ExitProfileError,
						fmt.Sprintf("failed to fetch profiles from %s", repo), err)
				}
			}

			store := a.store()
			for _, p := range profiles {
				if err := store.Save(p); err != nil {
					return profileError(p.Name, err)
				}
				VerboseLog("Saved %s (%d mods)", p.Name, len(p.Mods))
			}
			printProfileList(cmd.OutOrStdout(), profiles)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoFlag, "repo", "", "Shared repository as owner/repo[/path]")

	return cmd
}

func printProfileSaved(w io.Writer, p *profile.Profile) {
	if IsJSONOutput() {
		printJSON(w, p)
		return
	}
	fmt.Fprintf(w, "Saved profile %q with %d mods\n", p.Name, len(p.Mods))
}

// printProfileList outputs profiles as a table or a JSON array.
//
// The table format is:
//
//	NAME           MODS  SAVED             SOURCE
//	fabric-1.21    42    2026-10-15 12:00  local
func printProfileList(w io.Writer, profiles []*profile.Profile) {
	if IsJSONOutput() {
		type resultJSON struct {
			Profiles []*profile.Profile `json:"profiles"`
		}
		result := resultJSON{Profiles: make([]*profile.Profile, 0, len(profiles))}
		result.Profiles = append(result.Profiles, profiles...)
		printJSON(w, result)
		return
	}

	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles found.")
		return
	}

	fmt.Fprintf(w, "%-24s %-6s %-17s %s\n", "NAME", "MODS", "SAVED", "SOURCE")
	for _, p := range profiles {
		fmt.Fprintf(w, "%-24s %-6d %-17s %s\n",
			p.Name, len(p.Mods), formatSavedAt(p.SavedAt), orDash(p.Source))
	}
}

func formatSavedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
