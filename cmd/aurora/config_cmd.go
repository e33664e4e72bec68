package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/aurora/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage preset files",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the default presets to a .yaml or .toml file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s exists (use --force to overwrite)", path)
		}
		if err := config.Default().Write(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Validate a preset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		theme, params, err := cfg.Active()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: theme=%s stops=%v amplitude=%g blend=%g speed=%g\n",
			theme, params.ColorStops.Hex(), params.Amplitude, params.Blend, params.Speed)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
}
