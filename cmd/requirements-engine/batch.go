// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/requirements-engine/internal/batch"
	"github.com/pdiddy/requirements-engine/internal/history"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract and plan every description matching a glob pattern",
	Long: `Batch processes every file matching the configured pattern
(default descriptions/**/*.txt) and writes <name>-plan.yaml files to the
output directory (default plans/). Descriptions whose plan is newer than
the description are skipped on subsequent runs.

With --watch, batch keeps running and reprocesses descriptions as they are
created or edited.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	save, _ := cmd.Flags().GetBool("save")

	in, err := inputFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := []batch.Option{batch.WithOverrides(in.Overrides)}
	if save {
		store, err := history.Open(cfg.History, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, batch.WithRecorder(store))
	}

	b, err := batch.New(p, cfg.Batch, logger, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Start watching before the initial pass so edits made during it are seen.
	var w *batch.Watcher
	if watch {
		if w, err = b.Watcher(os.Stdout); err != nil {
			return err
		}
	}

	result, err := b.Run(ctx, os.Stdout)
	if err != nil {
		return err
	}
	if w != nil {
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl-C to stop)")
		return w.Run(ctx)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d description(s) failed", result.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("pattern", "", "glob selecting description files (default descriptions/**/*.txt)")
	batchCmd.Flags().String("output-dir", "", "directory receiving <name>-plan.yaml files (default plans)")
	batchCmd.Flags().String("framework", "", "override the framework for every description")
	batchCmd.Flags().String("database", "", "override the database for every description")
	batchCmd.Flags().String("auth", "", "override authentication for every description")
	batchCmd.Flags().Bool("watch", false, "keep running and reprocess descriptions on change")
	batchCmd.Flags().Bool("save", false, "record every run in the history database")
	viper.BindPFlag("batch.pattern", batchCmd.Flags().Lookup("pattern"))
	viper.BindPFlag("batch.output_dir", batchCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(batchCmd)
}
