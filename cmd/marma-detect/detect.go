package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/marma-detector/internal/config"
	apperrors "github.com/menta2k/marma-detector/internal/errors"
	"github.com/menta2k/marma-detector/pkg/types"
)

// OutputOptions holds the output flags shared by detect and batch
type OutputOptions struct {
	OutDir   string
	Format   string
	Quality  int
	NoRender bool
	Crops    bool
}

var detectOpts OutputOptions

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Detect marma points on one image and print the result as JSON",
	// Argument errors are reported as a JSON result like every other failure
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return printJSON(types.Failure(string(apperrors.ErrorTypeInput), "usage: marma-detect detect <imagePath>"))
		}
		if err := applyOutputOptions(cmd, cfg, detectOpts); err != nil {
			return err
		}

		result := newDetector().DetectFile(args[0])
		if result.OK {
			log.Info("cli", "detection finished", map[string]interface{}{
				"path":    args[0],
				"markers": len(result.Markers),
				"feet":    result.FeetDetected,
			})
		}
		return printJSON(result)
	},
}

func init() {
	addOutputFlags(detectCmd, &detectOpts)
	rootCmd.AddCommand(detectCmd)
}

func addOutputFlags(cmd *cobra.Command, opts *OutputOptions) {
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for annotated images and crops (default: next to the input)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: jpg|png|webp (default from config)")
	cmd.Flags().IntVarP(&opts.Quality, "quality", "q", 0, "JPEG/WebP output quality 1-100 (default from config)")
	cmd.Flags().BoolVar(&opts.NoRender, "no-render", false, "do not write the annotated image")
	cmd.Flags().BoolVar(&opts.Crops, "crops", false, "write each detected foot as a separate crop")
}

// applyOutputOptions overlays the flags the user actually set onto cfg and
// validates the result
func applyOutputOptions(cmd *cobra.Command, cfg *config.Config, opts OutputOptions) error {
	if cmd.Flags().Changed("out") {
		cfg.Output.OutputDir = opts.OutDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = opts.Format
	}
	if cmd.Flags().Changed("quality") {
		cfg.Output.Quality = opts.Quality
	}
	if opts.NoRender {
		cfg.Output.Render = false
	}
	if opts.Crops {
		cfg.Output.Crops = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid output flags: %w", err)
	}
	return nil
}
