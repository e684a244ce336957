package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/hockey"
	"github.com/aretw0/hockey/pkg/core"
)

// editorOptions are shared by every command.
func editorOptions() []hockey.Option {
	opts := []hockey.Option{hockey.WithLogger(slog.Default())}
	if configDir != "" {
		opts = append(opts, hockey.WithConfigDir(configDir))
	}
	return opts
}

// openProject resolves arg and opens it, exiting on failure.
func openProject(ctx context.Context, arg string) *hockey.Editor {
	path, err := hockey.FindProject(arg)
	if err != nil {
		fatal("Error locating project", err)
	}
	ed, err := hockey.Open(ctx, path, editorOptions()...)
	if err != nil {
		fatal("Error opening project", err)
	}
	return ed
}

// save writes ed back to where it was opened from, exiting on failure.
func save(ctx context.Context, ed *hockey.Editor) {
	if err := ed.Save(ctx, ""); err != nil {
		fatal("Error saving project", err)
	}
}

func parseFrame(flag, value string, fps float64) int {
	n, err := core.ParseFrameOrTimecode(value, fps)
	if err != nil {
		fatal(fmt.Sprintf("Invalid --%s", flag), err)
	}
	return n
}

func parseIndex(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fatal("Invalid index", err)
	}
	return n
}
