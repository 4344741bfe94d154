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

// planParams bundles the dependencies for the plan command, mirroring
// applyParams so runPlan is testable without Cobra.
type planParams struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	opts   recipe.Options
	logger *log.Logger
}

// newPlanCommand creates the `minioctl plan` command, which reports pending
// changes without mutating the host.
func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show pending changes without touching the host",
		Long: `Show pending changes without touching the host.

Every resource is checked in dependency order and the drift it would
correct is reported as a diff line. Nothing is created, downloaded, or
restarted; the network is never touched.`,
		Example: `  # Preview the next apply
  minioctl plan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, _, err := config.Load(cfgFile)
			if err != nil {
				renderFailure(cmd.ErrOrStderr(), err, verbose)
				return &ExitError{Code: 2, Err: err}
			}

			p := planParams{
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
				cfg:    cfg,
				logger: newRunLogger(cmd.ErrOrStderr(), verbose),
			}

			if err := runPlan(cmd.Context(), p); err != nil {
				renderFailure(p.stderr, err, verbose)
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}
}

// runPlan checks every resource and renders the pending diff.
func runPlan(ctx context.Context, p planParams) error {
	r, err := recipe.Build(p.cfg, p.opts)
	if err != nil {
		return err
	}

	rep, planErr := engine.New(p.logger).Plan(ctx, r.Graph, r.Resources)
	if rep != nil {
		fmt.Fprintln(p.stdout, TitleStyle.Render("minioctl plan"))
		fmt.Fprintln(p.stdout)
		renderPlanReport(p.stdout, rep)
	}
	return planErr
}
