package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear [project]",
	Short: "Remove every marker of a project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ed := openProject(ctx, argOrEmpty(args))
		defer ed.Close()

		n := ed.Model().Len()
		if err := ed.ClearMarkers(); err != nil {
			fatal("Error clearing markers", err)
		}
		save(ctx, ed)
		fmt.Printf("Removed %d marker(s)\n", n)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
