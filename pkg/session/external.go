package session

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/hockey/pkg/adapters/watch"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/lifecycle"
)

// ExternalChange reports that the open project file was modified or removed
// by someone other than this editor.
type ExternalChange struct {
	Path    string
	Removed bool
	Time    time.Time
}

type externalListener struct {
	fn func(ExternalChange)
}

// OnExternalChange registers fn for external modifications of the project
// file. Requires Settings.WatchExternal.
func (e *Editor) OnExternalChange(fn func(ExternalChange)) core.Subscription {
	l := &externalListener{fn: fn}
	e.mu.Lock()
	e.external = append(e.external, l)
	e.mu.Unlock()
	return core.NewSubscription(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.external = slices.DeleteFunc(e.external, func(x *externalListener) bool { return x == l })
	})
}

func (e *Editor) startWatcher(path string) {
	e.mu.Lock()
	same := e.stopWatch != nil && e.watchPath == path
	e.mu.Unlock()
	if same {
		return
	}
	e.stopWatcher()

	ctx, cancel := context.WithCancel(e.ctx)
	w := watch.New(path, watch.WithLogger(e.logger))
	ch, err := w.Start(ctx)
	if err != nil {
		cancel()
		if e.logger != nil {
			e.logger.Warn("cannot watch project file", "path", path, "error", err)
		}
		return
	}

	e.mu.Lock()
	e.stopWatch = cancel
	e.watchPath = path
	e.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for ev := range ch {
			e.handleExternal(ev)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if e.logger != nil {
			e.logger.Error("external change handler panic", "error", err)
		}
	}))
}

func (e *Editor) stopWatcher() {
	e.mu.Lock()
	stop := e.stopWatch
	e.stopWatch = nil
	e.watchPath = ""
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// handleExternal drops events caused by the editor's own saves.
func (e *Editor) handleExternal(ev watch.Event) {
	change := ExternalChange{Path: ev.Path, Removed: ev.Op == watch.OpRemove, Time: ev.Time}
	current := statFile(ev.Path)

	e.mu.Lock()
	if !change.Removed && current == e.stamp {
		e.mu.Unlock()
		return
	}
	if current.mod == 0 {
		change.Removed = true
	}
	listeners := slices.Clone(e.external)
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("project file changed externally", "path", ev.Path, "removed", change.Removed)
	}
	for _, l := range listeners {
		l.fn(change)
	}
}
