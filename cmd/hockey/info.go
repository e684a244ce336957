package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/aretw0/hockey/pkg/core"
)

var infoCmd = &cobra.Command{
	Use:   "info [project]",
	Short: "Show project details and per-event statistics",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ed := openProject(ctx, argOrEmpty(args))
		defer ed.Close()

		p := ed.Project()
		sum := ed.Stats()
		bold := color.New(color.Bold)

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Name"), p.Name)
		tbl.AddRow(bold.Sprint("File"), p.FilePath)
		tbl.AddRow(bold.Sprint("Video"), p.VideoPath)
		tbl.AddRow(bold.Sprint("FPS"), p.FPS)
		tbl.AddRow(bold.Sprint("Format"), p.Version)
		tbl.AddRow(bold.Sprint("Created"), p.CreatedAt.Format(time.DateTime))
		tbl.AddRow(bold.Sprint("Modified"), p.ModifiedAt.Format(time.DateTime))
		tbl.AddRow(bold.Sprint("Markers"), fmt.Sprintf("%d (%d with notes)", sum.Total, sum.WithNotes))
		tbl.AddRow(bold.Sprint("Annotated"), core.FramesToTimecode(sum.Frames, p.FPS))
		_, _ = fmt.Fprintln(color.Output, tbl)

		if len(sum.Events) == 0 {
			return
		}
		_, _ = fmt.Fprintln(color.Output, "")
		printEventStats(sum.Events, p.FPS)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
