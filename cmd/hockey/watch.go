package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/hockey"
	"github.com/aretw0/hockey/pkg/adapters/archive"
	"github.com/aretw0/hockey/pkg/adapters/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [project]",
	Short: "Report changes to a project file until interrupted",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := hockey.FindProject(argOrEmpty(args))
		if err != nil {
			fatal("Error locating project", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w := watch.New(path,
			watch.WithLogger(slog.Default()),
			watch.WithErrorHandler(func(err error) {
				slog.Warn("watch error", "error", err)
			}),
		)
		src := watch.NewSource(w)
		if err := src.Start(ctx); err != nil {
			fatal("Error watching project", err)
		}

		store := archive.New(archive.WithLogger(slog.Default()))
		fmt.Printf("Watching %s\n", path)
		for ev := range src.Events() {
			e, ok := ev.(watch.Event)
			if !ok {
				continue
			}
			stamp := e.Time.Format("15:04:05")
			if e.Op == watch.OpRemove {
				_, _ = fmt.Fprintf(color.Output, "%s %s\n", stamp, color.RedString("removed"))
				continue
			}
			p, err := store.Load(ctx, path)
			if err != nil {
				_, _ = fmt.Fprintf(color.Output, "%s %s %v\n", stamp, color.YellowString("unreadable"), err)
				continue
			}
			_, _ = fmt.Fprintf(color.Output, "%s %s %d marker(s)\n", stamp, color.GreenString("changed"), len(p.Markers))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
