// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"minioctl/internal/config"
	"minioctl/internal/engine"
	"minioctl/internal/recipe"
)

// applyParams bundles the dependencies and flags for the apply command,
// enabling the core logic in runApply to be tested without a real Cobra
// command or a live host.
type applyParams struct {
	stdout  io.Writer
	stderr  io.Writer
	cfg     *config.Config
	cfgPath string
	opts    recipe.Options
	logger  *log.Logger
	verbose bool
}

// newApplyCommand creates the `minioctl apply` command, which converges the
// host to the declared state.
func newApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Converge the host to the declared MinIO deployment",
		Long: `Converge the host to the declared MinIO deployment.

Resources are evaluated in dependency order: the storage volume
precondition, the directory chain, TLS certificates, the pinned server
binary, and the systemd unit and service. Resources already in sync are
left untouched. A failure aborts the run; changes applied before the
failure stay applied and the run can simply be repeated.`,
		Example: `  # Converge using the default config search path
  minioctl apply

  # Converge with an explicit config file
  minioctl apply --config /etc/minioctl/config.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, cfgPath, err := config.Load(cfgFile)
			if err != nil {
				renderFailure(cmd.ErrOrStderr(), err, verbose)
				return &ExitError{Code: 2, Err: err}
			}

			p := applyParams{
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
				cfg:     cfg,
				cfgPath: cfgPath,
				logger:  newRunLogger(cmd.ErrOrStderr(), verbose),
				verbose: verbose,
			}

			if err := runApply(cmd.Context(), p); err != nil {
				renderFailure(p.stderr, err, p.verbose)
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}
}

// runApply is the core convergence logic, separated from Cobra for
// testability. All user-facing output goes through p.stdout and p.stderr.
func runApply(ctx context.Context, p applyParams) error {
	if p.cfgPath != "" {
		p.logger.Debug("configuration loaded", "path", p.cfgPath)
	} else {
		p.logger.Debug("no configuration file found, using defaults")
	}

	r, err := recipe.Build(p.cfg, p.opts)
	if err != nil {
		return err
	}

	rep, convergeErr := engine.New(p.logger).Converge(ctx, r.Graph, r.Resources)
	if rep != nil {
		fmt.Fprintln(p.stdout, TitleStyle.Render("minioctl apply"))
		fmt.Fprintln(p.stdout)
		renderConvergeReport(p.stdout, rep)
	}
	return convergeErr
}

// newRunLogger builds the structured logger for engine runs.
func newRunLogger(w io.Writer, verboseMode bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "minioctl",
	})
	if verboseMode {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
