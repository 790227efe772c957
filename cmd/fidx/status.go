package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index run status",
	Long:  `Display whether an index run is active and the last completed run with its stats.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	active, last, err := a.coord.Status()
	if err != nil {
		return err
	}

	if active != nil {
		fmt.Printf("active run: %s (%s), started %s\n", active.ID, active.Kind, active.StartedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("no active run")
	}

	if last != nil {
		fmt.Println("last completed:")
		printRun(last)
	} else {
		fmt.Println("no completed runs")
	}
	return nil
}
