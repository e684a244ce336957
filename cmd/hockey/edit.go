package main

import (
	"context"
	"fmt"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/spf13/cobra"
)

var (
	editStart string
	editEnd   string
	editEvent string
	editNote  string
)

var editCmd = &cobra.Command{
	Use:   "edit [project] [index]",
	Short: "Change fields of a marker",
	Long:  `Change the given fields of a marker. Fields without a flag keep their value.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		project, indexArg := "", args[0]
		if len(args) == 2 {
			project, indexArg = args[0], args[1]
		}
		ctx := context.Background()
		ed := openProject(ctx, project)
		defer ed.Close()

		fps := ed.Project().FPS
		var patch core.MarkerPatch
		flags := cmd.Flags()
		if flags.Changed("start") {
			v := parseFrame("start", editStart, fps)
			patch.StartFrame = &v
		}
		if flags.Changed("end") {
			v := parseFrame("end", editEnd, fps)
			patch.EndFrame = &v
		}
		if flags.Changed("event") {
			patch.EventName = &editEvent
		}
		if flags.Changed("note") {
			patch.Note = &editNote
		}
		if patch.Empty() {
			fatal("Nothing to change", fmt.Errorf("pass at least one of --start --end --event --note"))
		}

		index := parseIndex(indexArg)
		if err := ed.ModifyMarker(index, patch); err != nil {
			fatal("Error editing marker", err)
		}
		save(ctx, ed)
		fmt.Printf("Marker #%d updated\n", index)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editStart, "start", "", "New start frame or timecode")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end frame or timecode")
	editCmd.Flags().StringVarP(&editEvent, "event", "e", "", "New event type")
	editCmd.Flags().StringVar(&editNote, "note", "", "New note")
}
