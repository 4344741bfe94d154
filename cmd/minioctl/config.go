// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"minioctl/internal/config"
)

// newConfigCommand creates the `minioctl config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minioctl configuration",
		Long: `Manage minioctl configuration.

Configuration is read from the first file found in:
  1. --config flag
  2. /etc/minioctl/config.cue
  3. ~/.config/minioctl/config.cue (per-user)
  4. ./config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return showConfig(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir, _ := cmd.Flags().GetString("dir")
			return initConfigFile(cmd.OutOrStdout(), dir)
		},
	}
	initCmd.Flags().String("dir", "", "directory for the new config file (default "+config.SystemConfigDir+")")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file search path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.OutOrStdout())
		},
	})

	return cfgCmd
}

// showConfig prints the effective configuration (defaults merged with the
// resolved config file) as TOML.
func showConfig(stdout, stderr io.Writer) error {
	cfg, cfgPath, err := config.Load(cfgFile)
	if err != nil {
		renderFailure(stderr, err, verbose)
		return &ExitError{Code: 2, Err: err}
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(stdout)
	if cfgPath != "" {
		fmt.Fprintf(stdout, "%s: %s\n", ResourceStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", ResourceStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(stdout)

	rendered, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}
	_, err = stdout.Write(rendered)
	return err
}

func initConfigFile(stdout io.Writer, dir string) error {
	path, err := config.WriteStarterConfig(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s Created starter configuration at %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(stdout, SubtitleStyle.Render("Pin version and checksum before the first apply."))
	return nil
}

func showConfigPath(stdout io.Writer) error {
	name := config.ConfigFileName + "." + config.ConfigFileExt

	fmt.Fprintf(stdout, "System config file: %s/%s\n", config.SystemConfigDir, name)
	if userDir, err := config.ConfigDir(); err == nil {
		fmt.Fprintf(stdout, "User config file:   %s/%s\n", userDir, name)
	}
	return nil
}
