package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/fidx/pkg/fidx/indexer"
	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

var (
	rebuildRootID    string
	rebuildForceHash bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from disk",
	Long: `Walk the configured roots and reconcile the index with what is on
disk, detecting renames of referenced files by content hash. Only one rebuild
can run at a time.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildRootID, "root", "", "rebuild only this root id")
	rebuildCmd.Flags().BoolVar(&rebuildForceHash, "force-hash", false, "re-hash every file regardless of size")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Flip runs left behind by a dead process before claiming the slot.
	if _, err := a.coord.CancelStaleRuns(a.cfg.StaleRunAge); err != nil {
		return err
	}

	opts := indexer.Options{ForceHash: rebuildForceHash}
	var run *store.IndexRun
	if rebuildRootID != "" {
		run, err = a.coord.RebuildRoot(cmd.Context(), rebuildRootID, opts)
	} else {
		run, err = a.coord.Rebuild(cmd.Context(), opts)
	}
	if err != nil {
		if errors.Is(err, indexer.ErrRunActive) {
			return fmt.Errorf("another index run is active; retry when it finishes")
		}
		return err
	}

	printRun(run)
	return nil
}

func printRun(run *store.IndexRun) {
	fmt.Printf("run %s: %s (%s)\n", run.ID, run.Status, run.Kind)
	fmt.Printf("  added:   %d\n", run.Stats.Added)
	fmt.Printf("  updated: %d\n", run.Stats.Updated)
	fmt.Printf("  removed: %d\n", run.Stats.Removed)
	fmt.Printf("  errors:  %d\n", run.Stats.Errors)
	fmt.Printf("  size:    %s\n", humanize.IBytes(uint64(run.Stats.TotalSize)))
	fmt.Printf("  took:    %s\n", run.Stats.Duration.Round(timeRound))
	if run.Stats.Failure != "" {
		fmt.Printf("  failure: %s\n", run.Stats.Failure)
	}
}

// timeRound keeps durations readable in command output.
const timeRound = time.Millisecond
