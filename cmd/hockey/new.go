package main

import (
	"context"
	"fmt"

	"github.com/aretw0/hockey"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/spf13/cobra"
)

var (
	newOutput string
	newVideo  string
	newFPS    float64
)

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create an empty project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		name := args[0]
		out := newOutput
		if out == "" {
			out = name
		}

		ed, err := hockey.New(editorOptions()...)
		if err != nil {
			fatal("Error initializing editor", err)
		}
		defer ed.Close()

		if err := ed.NewProject(name, newVideo, newFPS); err != nil {
			fatal("Error creating project", err)
		}
		if err := ed.Save(ctx, out); err != nil {
			fatal("Error saving project", err)
		}
		fmt.Printf("Created project %q at %s\n", name, ed.Project().FilePath)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "", "Project file (default NAME.hep)")
	newCmd.Flags().StringVar(&newVideo, "video", "", "Path of the annotated video")
	newCmd.Flags().Float64Var(&newFPS, "fps", core.DefaultFPS, "Video frame rate")
}
