package hockey

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/aretw0/hockey/internal/platform"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/reactive"
	"github.com/aretw0/hockey/pkg/session"
)

// Version is the library version.
//
//go:embed VERSION
var Version string

// --- Types ---

// Editor is the annotation session a presentation layer drives.
type Editor = session.Editor

// Settings are the editor preferences.
type Settings = session.Settings

// Marker is a tagged interval of video frames.
type Marker = core.Marker

// Observer receives coalesced timeline updates.
type Observer = reactive.Observer

// --- Configuration ---

// Option defines a functional option for configuring the editor.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithContext bounds the background workers.
func WithContext(ctx context.Context) Option {
	return platform.WithContext(ctx)
}

// WithStore allows injecting a custom project store.
func WithStore(store core.ProjectStore) Option {
	return platform.WithStore(store)
}

// WithRegistry injects an event-type registry.
func WithRegistry(r *events.Registry) Option {
	return platform.WithRegistry(r)
}

// WithVideo bounds marker frames by the video geometry.
func WithVideo(v core.VideoSource) Option {
	return platform.WithVideo(v)
}

// WithSettings uses s instead of the settings file.
func WithSettings(s Settings) Option {
	return platform.WithSettings(s)
}

// WithConfigDir reads settings from dir instead of ~/.hockey-editor.
func WithConfigDir(dir string) Option {
	return platform.WithConfigDir(dir)
}

// WithoutConfig skips the settings file.
func WithoutConfig() Option {
	return platform.WithoutConfig()
}

// WithRecordingMode overrides the hotkey recording mode.
func WithRecordingMode(mode session.RecordingMode) Option {
	return platform.WithRecordingMode(mode)
}

// WithWatchExternal toggles external change detection.
func WithWatchExternal(enabled bool) Option {
	return platform.WithWatchExternal(enabled)
}

// WithAutosave toggles the autosave worker.
func WithAutosave(enabled bool) Option {
	return platform.WithAutosave(enabled)
}

// --- Factory ---

// New creates an editor holding an empty project.
func New(opts ...Option) (*Editor, error) {
	return platform.New(opts...)
}

// Open creates an editor and loads the project at path.
func Open(ctx context.Context, path string, opts ...Option) (*Editor, error) {
	ed, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := ed.Open(ctx, path); err != nil {
		_ = ed.Close()
		return nil, err
	}
	return ed, nil
}

// --- Utils ---

// FindProject resolves a project file argument, searching upwards from a
// directory when needed.
func FindProject(arg string) (string, error) {
	return platform.FindProject(arg)
}
