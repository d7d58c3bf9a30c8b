package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// checkResult is the JSON output of the check command.
type checkResult struct {
	Tool       string `json:"tool"`
	Available  bool   `json:"available"`
	Version    string `json:"version,omitempty"`
	Runner     string `json:"runner"`
	Container  string `json:"container,omitempty"`
	Timeout    string `json:"timeout"`
	ConfigPath string `json:"configPath,omitempty"`
	ProfileDir string `json:"profileDir"`
	Repository string `json:"profileRepo"`
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the mod tool is installed and show the settings in use",
		Long: `Run the tool's version check and print the resolved configuration.

Exits with status 3 when the tool cannot be run.

Examples:
  ferium-companion check
  ferium-companion check --runner docker --container mc-server`,

		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	result := checkResult{
		Tool:       a.cfg.Tool,
		Runner:     a.cfg.Runner.String(),
		Container:  a.cfg.Container,
		Timeout:    timeoutText(a.cfg.Timeout.String(), a.cfg.Timeout == 0),
		ConfigPath: a.cfg.Path,
		ProfileDir: a.cfg.ProfileDir,
		Repository: a.cfg.ProfileRepo.String(),
	}

	available, checkErr := svc.Available(ctx)
	result.Available = available
	if available {
		if v, err := svc.Version(ctx); err == nil {
			result.Version = v
		}
	}

	printCheckResult(cmd.OutOrStdout(), result)

	if checkErr != nil {
		return model.WrapCLIError(model.ExitToolNotFound,
			fmt.Sprintf("%s could not be started", a.cfg.Tool), checkErr)
	}
	if !available {
		return model.NewCLIError(model.ExitToolNotFound,
			fmt.Sprintf("%s is installed but its version check failed", a.cfg.Tool))
	}
	return nil
}

func timeoutText(d string, disabled bool) string {
	if disabled {
		return "none"
	}
	return d
}

func printCheckResult(w io.Writer, r checkResult) {
	if IsJSONOutput() {
		printJSON(w, r)
		return
	}

	state := "not available"
	if r.Available {
		state = "available"
		if r.Version != "" {
			state += " (" + r.Version + ")"
		}
	}
	fmt.Fprintf(w, "%-12s %s\n", "Tool:", r.Tool+": "+state)
	runner := r.Runner
	if r.Container != "" {
		runner += " (" + r.Container + ")"
	}
	fmt.Fprintf(w, "%-12s %s\n", "Runner:", runner)
	fmt.Fprintf(w, "%-12s %s\n", "Timeout:", r.Timeout)
	config := r.ConfigPath
	if config == "" {
		config = "(defaults)"
	}
	fmt.Fprintf(w, "%-12s %s\n", "Config:", config)
	fmt.Fprintf(w, "%-12s %s\n", "Profiles:", r.ProfileDir)
	fmt.Fprintf(w, "%-12s %s\n", "Repository:", r.Repository)
}
