package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/aretw0/hockey/internal/platform"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
)

var (
	eventColor    string
	eventShortcut string
	eventDesc     string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List event types",
	Run: func(cmd *cobra.Command, args []string) {
		_, reg := loadRegistry()

		bold := color.New(color.Bold)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Name"), bold.Sprint("Key"), bold.Sprint("Color"), bold.Sprint("Description"))
		for _, et := range reg.All() {
			name := et.Name
			if !events.IsDefault(et.Name) {
				name = color.CyanString(name)
			}
			tbl.AddRow(name, et.Shortcut, et.Color, et.Description)
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add name",
	Short: "Add a custom event type",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, reg := loadRegistry()
		et := core.EventType{
			Name:        args[0],
			Color:       eventColor,
			Shortcut:    eventShortcut,
			Description: eventDesc,
		}
		if err := reg.Add(et); err != nil {
			fatal("Error adding event type", err)
		}
		if err := reg.SaveFile(path); err != nil {
			fatal("Error saving event types", err)
		}
		fmt.Printf("Added %s\n", et.Name)
	},
}

var eventsRmCmd = &cobra.Command{
	Use:     "rm name",
	Aliases: []string{"remove"},
	Short:   "Remove a custom event type",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, reg := loadRegistry()
		if err := reg.Delete(args[0]); err != nil {
			fatal("Error removing event type", err)
		}
		if err := reg.SaveFile(path); err != nil {
			fatal("Error saving event types", err)
		}
		fmt.Printf("Removed %s\n", args[0])
	},
}

// loadRegistry reads the event types file named by the settings.
func loadRegistry() (string, *events.Registry) {
	cfg, err := platform.LoadConfig(configDir)
	if err != nil {
		fatal("Error loading settings", err)
	}
	path := cfg.EventsFile()
	reg, err := events.LoadFile(path)
	if err != nil {
		fatal("Error loading event types", err)
	}
	return path, reg
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsAddCmd, eventsRmCmd)

	eventsAddCmd.Flags().StringVarP(&eventColor, "color", "c", events.FallbackColor, "Color as #RRGGBB")
	eventsAddCmd.Flags().StringVarP(&eventShortcut, "shortcut", "k", "", "Single-key shortcut")
	eventsAddCmd.Flags().StringVarP(&eventDesc, "desc", "d", "", "Description")
}
