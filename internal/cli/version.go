package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var versionCheck bool

// versionCmd prints build information, optionally checking for a newer release.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the lumen version.

With --check, query GitHub for the latest release and report whether a
newer version is available.`,
	Example: `  lumen version
  lumen version --check`,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	current := version.Current()

	if !versionCheck {
		if formatter.Format() == output.FormatJSON {
			payload := struct {
				Version   string `json:"version"`
				GoVersion string `json:"go_version"`
				Platform  string `json:"platform"`
			}{
				Version:   current,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			return writeJSON(w, payload)
		}

		out(w, "lumen %s\n", current)
		out(w, "  go:       %s\n", runtime.Version())
		out(w, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	}

	ctx, cancel := contextWithTimeout(cmd, 15*time.Second)
	defer cancel()

	info, err := version.Check(ctx, current)
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		payload := struct {
			Version         string `json:"version"`
			Latest          string `json:"latest"`
			UpdateAvailable bool   `json:"update_available"`
		}{
			Version:         info.Current,
			Latest:          info.Latest,
			UpdateAvailable: info.IsNewer,
		}
		return writeJSON(w, payload)
	}

	out(w, "lumen %s\n", info.Current)
	if info.IsNewer {
		output.Warnf("A newer version is available: %s -> %s", info.Current, info.Latest)
		output.Info("Download it from https://github.com/lumenwallet/lumen/releases")
	} else {
		output.Success("You are on the latest version")
	}

	return nil
}
