// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"funcshell/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Load through a fresh provider so the shown values reflect the
		// --config flag even when the cached package config predates it.
		cfg, path, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{
			ConfigFilePath: cfgFile,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path != "" {
			fmt.Fprintln(out, SubtitleStyle.Render("// loaded from "+path))
		} else {
			fmt.Fprintln(out, SubtitleStyle.Render("// defaults (no config file found)"))
		}
		fmt.Fprint(out, config.GenerateCUE(cfg))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.CreateDefaultConfig(); err != nil {
			return err
		}
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("config ready in ")+cfgDir)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
