package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var skipCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if !skipCheck && version != "dev" && !skipOutput(cmd) {
				result = checkForUpdate(cmd)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"version": version, "update": result})
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "arabah version %s\n", version)
			if result == nil {
				return nil
			}
			errOut := cmd.ErrOrStderr()
			switch {
			case result.UpdateRequired:
				_, _ = fmt.Fprintf(errOut, "\nThis version is no longer supported (minimum %s). Update to %s.\n", result.MinimumVersion, result.LatestVersion)
			case result.UpdateAvailable:
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
			default:
				return nil
			}
			if result.UpdateURL != "" {
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&skipCheck, "no-check", false, "Skip the update check")
	return cmd
}

// checkForUpdate asks the server which versions it accepts. Any failure,
// including a missing configuration, yields nil.
func checkForUpdate(cmd *cobra.Command) *update.CheckResult {
	a, err := newApp(cmd)
	if err != nil {
		slog.Debug("update check skipped", "error", err)
		return nil
	}
	defer a.Close()
	return update.CheckForUpdate(cmd.Context(), a.client.Catalog(), version)
}
