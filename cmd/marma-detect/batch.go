package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	marmadetector "github.com/menta2k/marma-detector"
	"github.com/menta2k/marma-detector/internal/utils"
)

var (
	batchOpts    OutputOptions
	batchWorkers int
	batchNoBar   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Detect marma points on every image under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if !utils.DirExists(dir) {
			return fmt.Errorf("directory not found: %s", dir)
		}
		if err := applyOutputOptions(cmd, cfg, batchOpts); err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Batch.Workers = batchWorkers
		}

		paths, err := collectInputs(dir, cfg.Output.Suffix)
		if err != nil {
			return err
		}
		log.Info("cli", "batch started", map[string]interface{}{
			"dir":     dir,
			"images":  len(paths),
			"workers": cfg.Batch.Workers,
		})

		var onDone func(marmadetector.BatchItem)
		if !batchNoBar && len(paths) > 0 {
			bar := progressbar.NewOptions(len(paths),
				progressbar.OptionSetDescription("detecting"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			onDone = func(marmadetector.BatchItem) { _ = bar.Add(1) }
		}

		items := newDetector().DetectBatch(cmd.Context(), paths, cfg.Batch.Workers, onDone)

		ok := 0
		for _, item := range items {
			if item.Result.OK {
				ok++
			}
		}
		log.Info("cli", "batch finished", map[string]interface{}{
			"images":    len(items),
			"succeeded": ok,
		})

		return printJSON(items)
	},
}

func init() {
	addOutputFlags(batchCmd, &batchOpts)
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "number of parallel workers (default: config, then CPU count)")
	batchCmd.Flags().BoolVar(&batchNoBar, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(batchCmd)
}

// collectInputs lists the images under dir, skipping artifacts written by
// earlier runs
func collectInputs(dir, annotatedSuffix string) ([]string, error) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if utils.IsGeneratedFile(f, annotatedSuffix) {
			continue
		}
		paths = append(paths, f)
	}
	return paths, nil
}
