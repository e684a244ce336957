package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/hockey/pkg/adapters/archive"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/query"
)

var (
	statsJSON bool
	statsJobs int
)

var statsCmd = &cobra.Command{
	Use:   "stats glob...",
	Short: "Aggregate event statistics over many projects",
	Long: `Load every project matching the given patterns (e.g. 'season/**/*.hep')
and print per-event counts across all of them.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var paths []string
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				fatal("Invalid pattern", err)
			}
			paths = append(paths, matches...)
		}
		slices.Sort(paths)
		paths = slices.Compact(paths)
		if len(paths) == 0 {
			fatal("No projects", fmt.Errorf("nothing matches %v", args))
		}

		store := archive.New(archive.WithLogger(slog.Default()))
		summaries := make([]query.Summary, len(paths))
		var mu sync.Mutex
		var skipped []string

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(statsJobs)
		for i, path := range paths {
			g.Go(func() error {
				p, err := store.Load(ctx, path)
				if err != nil {
					slog.Warn("skipping project", "path", path, "error", err)
					mu.Lock()
					skipped = append(skipped, path)
					mu.Unlock()
					return nil
				}
				summaries[i] = query.Summarize(p.Markers)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			fatal("Error loading projects", err)
		}

		total := query.Merge(summaries...)
		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(total); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("%d project(s), %d marker(s), %d with notes\n",
			len(paths)-len(skipped), total.Total, total.WithNotes)
		if len(skipped) > 0 {
			fmt.Printf("%d skipped\n", len(skipped))
		}
		if len(total.Events) > 0 {
			_, _ = fmt.Fprintln(color.Output, "")
			printEventStats(total.Events, 0)
		}
	},
}

// printEventStats renders per-event rows. Durations are shown as timecodes
// when fps is known, otherwise in frames.
func printEventStats(events []query.EventStats, fps float64) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Event"), bold.Sprint("Count"), bold.Sprint("Duration"))
	for _, es := range events {
		dur := fmt.Sprintf("%d frames", es.Frames)
		if fps > 0 {
			dur = core.FramesToTimecode(es.Frames, fps)
		}
		tbl.AddRow(es.EventName, es.Count, dur)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	statsCmd.Flags().IntVarP(&statsJobs, "jobs", "j", 4, "Projects loaded in parallel")
}
