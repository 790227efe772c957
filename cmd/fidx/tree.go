package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/fidx/pkg/fidx/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree <root-id>",
	Short: "Print the indexed file tree of a root",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(_ *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	root, err := a.store.GetRoot(args[0])
	if err != nil {
		return err
	}
	node, err := tree.BuildFromStore(a.store, root)
	if err != nil {
		return err
	}
	printNode(node)
	return nil
}

func printNode(n *tree.Node) {
	indent := strings.Repeat("  ", n.Depth())
	if n.IsDir {
		fmt.Printf("%s%s/ (%d files, %s)\n", indent, n.Name, n.FileCount, humanize.IBytes(uint64(n.TotalSize)))
	} else {
		fmt.Printf("%s%s (%s)\n", indent, n.Name, humanize.IBytes(uint64(n.Size)))
	}
	for _, child := range n.Children {
		printNode(child)
	}
}
