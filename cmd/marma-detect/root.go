package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	marmadetector "github.com/menta2k/marma-detector"
	"github.com/menta2k/marma-detector/internal/config"
	"github.com/menta2k/marma-detector/internal/logger"
	"github.com/menta2k/marma-detector/internal/utils"
)

var (
	configPath string
	logLevel   string

	// cfg and log are resolved once per invocation in PersistentPreRunE
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "marma-detect",
	Short:         "Locate marma points on photographs of the soles of the feet",
	Version:       marmadetector.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.NewConsoleLogger(logger.ParseLevel(logLevel))

		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	// Ctrl+C stops a batch between images
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file (default: "+config.GetConfigPath()+" when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error|disabled (default: $MARMA_LOG_LEVEL or info)")
}

// loadConfig reads an explicit config file, falls back to the per-user file
// when it exists, and otherwise returns the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	if utils.FileExists(config.GetConfigPath()) {
		return config.LoadFromFile(config.GetConfigPath())
	}
	return config.Default(), nil
}

func newDetector() *marmadetector.Detector {
	d := marmadetector.NewWithConfig(cfg.Loader, cfg.Pipeline(), cfg.Output)
	d.SetLogger(log)
	return d
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
