package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/marma-detector/internal/config"
	"github.com/menta2k/marma-detector/internal/utils"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	// init must work even when the existing file is broken
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if utils.FileExists(path) && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cfg)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a configuration file",
	Args:  cobra.ExactArgs(1),
	// validate reports its own errors instead of failing in the root hook
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(os.Stderr, "%s is valid\n", args[0])
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
