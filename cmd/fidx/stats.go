package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [root-id]",
	Short: "Show per-root aggregate stats",
	Long:  `Display file/directory counts and total size for one root or all of them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		root, err := a.store.GetRoot(args[0])
		if err != nil {
			return err
		}
		return printRootStats(a, root.ID, root.CanonicalPath)
	}

	roots, err := a.store.ListRoots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Println("no roots indexed yet; run 'fidx rebuild'")
		return nil
	}
	for _, root := range roots {
		if err := printRootStats(a, root.ID, root.CanonicalPath); err != nil {
			return err
		}
	}
	return nil
}

func printRootStats(a *app, rootID, path string) error {
	stats, err := a.coord.RootStats(rootID)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", path, rootID)
	fmt.Printf("  files: %d  dirs: %d  size: %s\n",
		stats.Files, stats.Dirs, humanize.IBytes(uint64(stats.TotalSize)))
	return nil
}
