package platform

import (
	"fmt"

	"github.com/aretw0/hockey/pkg/adapters/archive"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/session"
)

// New wires an editor from options and the user settings file.
//
//	ed, err := hockey.New(hockey.WithLogger(logger))
func New(opts ...Option) (*session.Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var cfg *Config
	if !o.noConfig {
		c, err := LoadConfig(o.configDir)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	settings := session.DefaultSettings()
	switch {
	case o.settings != nil:
		settings = *o.settings
	case cfg != nil:
		settings = cfg.Settings()
	}
	for _, fn := range o.mutate {
		fn(&settings)
	}

	registry := o.registry
	if registry == nil {
		if cfg != nil {
			r, err := events.LoadFile(cfg.EventsFile())
			if err != nil {
				return nil, fmt.Errorf("failed to load event types: %w", err)
			}
			registry = r
		} else {
			registry = events.NewRegistry()
		}
	}

	store := o.store
	if store == nil {
		store = archive.New(archive.WithLogger(o.logger))
	}

	editorOpts := []session.Option{
		session.WithContext(o.ctx),
		session.WithLogger(o.logger),
		session.WithStore(store),
		session.WithRegistry(registry),
		session.WithSettings(settings),
	}
	if o.video != nil {
		editorOpts = append(editorOpts, session.WithVideo(o.video))
	}
	if o.clock != nil {
		editorOpts = append(editorOpts, session.WithClock(o.clock))
	}
	if cfg != nil {
		logger := o.logger
		editorOpts = append(editorOpts,
			session.WithRecent(cfg.Recent()),
			session.WithRecentHook(func(paths []string) {
				if err := cfg.SetRecent(paths); err != nil && logger != nil {
					logger.Warn("failed to persist recent projects", "error", err)
				}
			}),
		)
	}

	return session.New(editorOpts...)
}
