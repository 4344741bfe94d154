// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"minioctl/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "minioctl",
		Short: "Declarative provisioning for a MinIO server host",
		Long: TitleStyle.Render("minioctl") + SubtitleStyle.Render(" - Declarative provisioning for a MinIO server host") + `

minioctl converges a host toward a declared MinIO deployment: storage
and configuration directories with the right ownership, a checksum-pinned
server binary, TLS certificate material, and the systemd service unit.

Every run is idempotent. Resources are evaluated in dependency order and
changes propagate restart notifications to the service, coalesced to at
most one restart per run.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'minioctl config init' to create a starter configuration
  2. Pin version and checksum to a published release
  3. Preview with 'minioctl plan', then converge with 'minioctl apply'

` + SubtitleStyle.Render("Examples:") + `
  minioctl plan             Show pending changes without touching the host
  minioctl apply            Converge the host to the declared state
  minioctl config show      Show the effective configuration
  minioctl config init      Create a starter configuration file`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/minioctl/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newConfigCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
