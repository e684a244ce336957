package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/hockey/pkg/session"
	"github.com/spf13/cobra"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [project] script.yaml",
	Short: "Apply a YAML edit script",
	Long: `Apply a sequence of add/edit/delete/clear/undo/redo steps to a project.
The project is saved only if every step succeeds.

  ops:
    - op: add
      event: Goal
      start: "00:12:03.500"
      end: 21800
    - op: delete
      indices: [3, 4]`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		project, scriptPath := "", args[0]
		if len(args) == 2 {
			project, scriptPath = args[0], args[1]
		}

		f, err := os.Open(scriptPath)
		if err != nil {
			fatal("Error reading script", err)
		}
		script, err := session.ParseScript(f)
		f.Close()
		if err != nil {
			fatal("Error parsing script", err)
		}

		ctx := context.Background()
		ed := openProject(ctx, project)
		defer ed.Close()

		n, err := ed.RunScript(script)
		if err != nil {
			fatal(fmt.Sprintf("Script failed after %d step(s)", n), err)
		}
		if applyDryRun {
			fmt.Printf("%d step(s) ok, %d marker(s) (dry run, not saved)\n", n, ed.Model().Len())
			return
		}
		save(ctx, ed)
		fmt.Printf("Applied %d step(s), %d marker(s)\n", n, ed.Model().Len())
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Run the script without saving")
}
