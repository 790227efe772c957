package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fidx/pkg/fidx/pathsec"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <path>",
	Short: "Resolve a path to its current index record",
	Long: `Resolve a path to its live file record, following the rename ledger
when the path is a historical name. A file renamed A→B→C is found under any
of the three names.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(_ *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	canon, err := pathsec.Canonicalize(args[0])
	if err != nil {
		return err
	}
	rec, err := a.store.ResolvePath(canon)
	if err != nil {
		return err
	}

	fmt.Printf("file_id: %s\n", rec.FileID)
	fmt.Printf("path:    %s\n", rec.CanonicalPath)
	fmt.Printf("size:    %d\n", rec.Size)
	if rec.ContentHash != "" {
		fmt.Printf("hash:    %s\n", rec.ContentHash)
	}

	aliases, err := a.store.AliasesByFile(rec.FileID)
	if err != nil {
		return err
	}
	for _, al := range aliases {
		fmt.Printf("alias:   %s -> %s (%s)\n", al.OldCanonicalPath, al.NewCanonicalPath, al.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
