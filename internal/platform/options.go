package platform

import (
	"context"
	"log/slog"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/reactive"
	"github.com/aretw0/hockey/pkg/session"
)

// options holds the internal configuration for the editor.
type options struct {
	ctx       context.Context
	logger    *slog.Logger
	store     core.ProjectStore
	registry  *events.Registry
	video     core.VideoSource
	clock     reactive.Clock
	settings  *session.Settings
	configDir string
	noConfig  bool
	mutate    []func(*session.Settings)
}

// Option defines a functional option for configuring the editor.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{ctx: context.Background()}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithContext bounds the background workers (autosave, file watcher).
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithStore allows injecting a custom project store (e.g. a mock).
// If provided, the .hep archive store is skipped.
func WithStore(store core.ProjectStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRegistry injects an event-type registry instead of loading the
// events file named in the settings.
func WithRegistry(r *events.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithVideo bounds marker frames by the geometry of the annotated video.
func WithVideo(v core.VideoSource) Option {
	return func(o *options) {
		o.video = v
	}
}

// WithClock replaces the wall clock used to coalesce timeline updates.
func WithClock(c reactive.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithSettings uses s instead of the settings file values.
func WithSettings(s session.Settings) Option {
	return func(o *options) {
		o.settings = &s
	}
}

// WithConfigDir reads settings from dir instead of ~/.hockey-editor.
func WithConfigDir(dir string) Option {
	return func(o *options) {
		o.configDir = dir
	}
}

// WithoutConfig skips the settings file entirely. Recent projects are not
// persisted and the stock event types are used unless WithRegistry is given.
func WithoutConfig() Option {
	return func(o *options) {
		o.noConfig = true
	}
}

// WithRecordingMode overrides the recording mode after settings are loaded.
func WithRecordingMode(mode session.RecordingMode) Option {
	return func(o *options) {
		o.mutate = append(o.mutate, func(s *session.Settings) { s.Mode = mode })
	}
}

// WithHistoryDepth overrides the undo depth after settings are loaded.
func WithHistoryDepth(n int) Option {
	return func(o *options) {
		o.mutate = append(o.mutate, func(s *session.Settings) { s.HistoryDepth = n })
	}
}

// WithWatchExternal toggles external change detection after settings are loaded.
func WithWatchExternal(enabled bool) Option {
	return func(o *options) {
		o.mutate = append(o.mutate, func(s *session.Settings) { s.WatchExternal = enabled })
	}
}

// WithAutosave toggles the autosave worker after settings are loaded.
func WithAutosave(enabled bool) Option {
	return func(o *options) {
		o.mutate = append(o.mutate, func(s *session.Settings) { s.Autosave = enabled })
	}
}
