package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/query"
)

var (
	listJSON    bool
	listEvents  []string
	listNotes   bool
	listPattern string
)

type listEntry struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	EventName string `json:"event_name"`
	Start     int    `json:"start_frame"`
	End       int    `json:"end_frame"`
	StartTC   string `json:"start"`
	EndTC     string `json:"end"`
	Note      string `json:"note,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List the markers of a project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ed := openProject(ctx, argOrEmpty(args))
		defer ed.Close()

		f := query.Filter{
			EventTypes: query.Set(listEvents...),
			HasNotes:   listNotes,
			Pattern:    listPattern,
		}
		if err := f.Validate(); err != nil {
			fatal("Invalid filter", err)
		}

		fps := ed.Project().FPS
		entries := ed.Filtered(f)
		out := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, listEntry{
				Index:     e.Index,
				ID:        e.Marker.ID,
				EventName: e.Marker.EventName,
				Start:     e.Marker.StartFrame,
				End:       e.Marker.EndFrame,
				StartTC:   core.FramesToTimecode(e.Marker.StartFrame, fps),
				EndTC:     core.FramesToTimecode(e.Marker.EndFrame, fps),
				Note:      e.Marker.Note,
			})
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(out); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if len(out) == 0 {
			fmt.Println("No markers.")
			return
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.AddRow(bold.Sprint("#"), bold.Sprint("Event"), bold.Sprint("Start"), bold.Sprint("End"), bold.Sprint("Note"))
		for _, e := range out {
			tbl.AddRow(e.Index, e.EventName, e.StartTC, e.EndTC, faint.Sprint(e.Note))
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringSliceVar(&listEvents, "event", nil, "Only these event types (repeatable)")
	listCmd.Flags().BoolVar(&listNotes, "notes", false, "Only markers with a note")
	listCmd.Flags().StringVar(&listPattern, "pattern", "", "Glob over event names, e.g. 'Shot*'")
}
