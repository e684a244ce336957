package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [project] index...",
	Short: "Delete markers",
	Long: `Delete one or more markers by index. Several indices are removed as a
single undoable step.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project := ""
		if !isNumber(args[0]) {
			project, args = args[0], args[1:]
		}
		if len(args) == 0 {
			fatal("Error", fmt.Errorf("no index given"))
		}

		indices := make([]int, 0, len(args))
		for _, a := range args {
			indices = append(indices, parseIndex(a))
		}

		ctx := context.Background()
		ed := openProject(ctx, project)
		defer ed.Close()

		if err := ed.DeleteMarkers(indices); err != nil {
			fatal("Error deleting markers", err)
		}
		save(ctx, ed)
		fmt.Printf("Deleted %d marker(s)\n", len(indices))
	},
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
