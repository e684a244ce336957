package main

import (
	"context"
	"fmt"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/spf13/cobra"
)

var (
	addEvent string
	addStart string
	addEnd   string
	addNote  string
)

var addCmd = &cobra.Command{
	Use:   "add [project]",
	Short: "Add a marker",
	Long: `Add a marker to a project. --start and --end accept frame numbers or
HH:MM:SS.mmm timecodes. Without --end the marker is a single frame.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if addEvent == "" || addStart == "" {
			fmt.Println("Error: --event and --start are required")
			cmd.Usage()
			fatal("Missing flags", fmt.Errorf("event and start"))
		}
		ctx := context.Background()
		ed := openProject(ctx, argOrEmpty(args))
		defer ed.Close()

		fps := ed.Project().FPS
		m := core.Marker{
			StartFrame: parseFrame("start", addStart, fps),
			EventName:  addEvent,
			Note:       addNote,
		}
		m.EndFrame = m.StartFrame
		if addEnd != "" {
			m.EndFrame = parseFrame("end", addEnd, fps)
		}

		idx, err := ed.AddMarker(m)
		if err != nil {
			fatal("Error adding marker", err)
		}
		save(ctx, ed)
		fmt.Printf("Added %s marker #%d (%s - %s)\n", m.EventName, idx,
			core.FramesToTimecode(m.StartFrame, fps), core.FramesToTimecode(m.EndFrame, fps))
	},
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addEvent, "event", "e", "", "Event type name")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start frame or timecode")
	addCmd.Flags().StringVar(&addEnd, "end", "", "End frame or timecode")
	addCmd.Flags().StringVar(&addNote, "note", "", "Free-text note")
}
