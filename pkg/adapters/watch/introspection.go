package watch

import (
	"time"

	"github.com/aretw0/introspection"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Path      string        `json:"path"`
	Active    bool          `json:"active"`
	Debounce  time.Duration `json:"debounce"`
	LastEvent *time.Time    `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := WatcherState{Path: w.path, Active: w.active, Debounce: w.delay}
	if !w.lastSeen.IsZero() {
		t := w.lastSeen
		st.LastEvent = &t
	}
	return st
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "file-watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
